package driven

import "context"

// CommandRunner runs external text-extraction tools such as pdftotext and tesseract.
type CommandRunner interface {
	// Run executes name with args, feeding stdin, and returns stdout.
	Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)

	// LookPath reports whether the named tool is installed.
	LookPath(name string) error
}
