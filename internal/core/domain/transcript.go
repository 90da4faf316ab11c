package domain

import (
	"fmt"
	"strconv"
	"time"
)

// GenerationTicket tags a generation request with the transcript position
// it targets. A reply is only committed while the ticket is current.
type GenerationTicket struct {
	// Seq is the sequence number the assistant turn will take.
	Seq int

	// Revision is the transcript revision the request was issued against.
	Revision uint64

	// UserTurnID is the user turn being answered.
	UserTurnID string
}

// Transcript is the ordered conversation log of one session.
//
// Entries live in an append log with a high-water mark: turns at or beyond
// the mark are discarded and overwritten by the next append. Every mutation
// bumps the revision, which invalidates outstanding generation tickets.
//
// Transcript is not safe for concurrent use; the owning session serialises access.
type Transcript struct {
	entries  []Turn
	head     int
	revision uint64
	nextID   int

	newID func() string
	now   func() time.Time
}

// TranscriptOption configures a Transcript.
type TranscriptOption func(*Transcript)

// WithTurnIDs sets the turn ID generator.
func WithTurnIDs(fn func() string) TranscriptOption {
	return func(t *Transcript) {
		if fn != nil {
			t.newID = fn
		}
	}
}

// WithClock sets the timestamp source.
func WithClock(fn func() time.Time) TranscriptOption {
	return func(t *Transcript) {
		if fn != nil {
			t.now = fn
		}
	}
}

// NewTranscript creates an empty transcript.
func NewTranscript(opts ...TranscriptOption) *Transcript {
	t := &Transcript{now: time.Now}
	t.newID = func() string {
		t.nextID++
		return "turn-" + strconv.Itoa(t.nextID)
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Len returns the number of live turns.
func (t *Transcript) Len() int {
	return t.head
}

// Revision returns the current revision.
func (t *Transcript) Revision() uint64 {
	return t.revision
}

// Turns returns a copy of the live turns.
func (t *Transcript) Turns() []Turn {
	out := make([]Turn, t.head)
	copy(out, t.entries[:t.head])
	return out
}

// Turn returns the live turn at index.
func (t *Transcript) Turn(index int) (Turn, error) {
	if index < 0 || index >= t.head {
		return Turn{}, fmt.Errorf("turn %d: %w", index, ErrInvalidTurnReference)
	}
	return t.entries[index], nil
}

// Last returns the final live turn.
func (t *Transcript) Last() (Turn, bool) {
	if t.head == 0 {
		return Turn{}, false
	}
	return t.entries[t.head-1], true
}

// AppendUser records a user turn and returns the ticket for its answer.
// A trailing unanswered user turn is superseded by the new one.
func (t *Transcript) AppendUser(content string) (Turn, GenerationTicket) {
	if last, ok := t.Last(); ok && last.Role == RoleUser {
		t.head--
	}
	turn := t.write(Turn{Role: RoleUser, Content: content})
	return turn, t.ticketFor(turn)
}

// Edit replaces the user turn at index and discards every later turn.
// The returned ticket targets the answer to the edited turn.
func (t *Transcript) Edit(index int, content string) (Turn, GenerationTicket, error) {
	existing, err := t.Turn(index)
	if err != nil {
		return Turn{}, GenerationTicket{}, err
	}
	if existing.Role != RoleUser {
		return Turn{}, GenerationTicket{}, fmt.Errorf("turn %d is an %s turn: %w",
			index, existing.Role, ErrInvalidTurnReference)
	}
	t.head = index
	turn := t.write(Turn{Role: RoleUser, Content: content})
	return turn, t.ticketFor(turn), nil
}

// Retry removes the trailing assistant turn and returns the preceding user
// turn with a ticket for its regenerated answer.
func (t *Transcript) Retry() (Turn, GenerationTicket, error) {
	last, ok := t.Last()
	if !ok || last.Role != RoleAssistant {
		return Turn{}, GenerationTicket{}, fmt.Errorf("retry needs a trailing assistant turn: %w",
			ErrInvalidTurnReference)
	}
	t.head--
	t.revision++
	user := t.entries[t.head-1]
	return user, t.ticketFor(user), nil
}

// Commit appends the assistant turn for ticket. It fails with ErrStaleResponse
// when the transcript changed since the ticket was issued.
func (t *Transcript) Commit(ticket GenerationTicket, reply AssistantReply) (Turn, error) {
	if ticket.Revision != t.revision || ticket.Seq != t.head {
		return Turn{}, fmt.Errorf("reply for turn %d at revision %d: %w",
			ticket.Seq, ticket.Revision, ErrStaleResponse)
	}

	turn := Turn{
		Role:    RoleAssistant,
		Content: reply.Content,
		Model:   reply.Model,
	}
	if ev := reply.Evidence; ev != nil {
		turn.Mode = ev.Mode
		turn.LowRelevance = ev.LowRelevance
		turn.Citations = append([]Citation(nil), ev.Citations...)
	}
	if reply.Err != nil {
		turn.Failed = true
		turn.Error = reply.Err.Error()
	}
	return t.write(turn), nil
}

// Clear drops every turn. Tickets issued before the clear stay stale.
func (t *Transcript) Clear() {
	t.entries = nil
	t.head = 0
	t.revision++
}

// Validate checks the transcript invariants: contiguous sequence numbers,
// strict user/assistant alternation starting with a user turn.
func (t *Transcript) Validate() error {
	for i := 0; i < t.head; i++ {
		turn := t.entries[i]
		if turn.Seq != i {
			return fmt.Errorf("turn %d has sequence %d", i, turn.Seq)
		}
		want := RoleUser
		if i%2 == 1 {
			want = RoleAssistant
		}
		if turn.Role != want {
			return fmt.Errorf("turn %d has role %s, want %s", i, turn.Role, want)
		}
	}
	return nil
}

// write stores turn at the high-water mark and advances it.
func (t *Transcript) write(turn Turn) Turn {
	turn.ID = t.newID()
	turn.Seq = t.head
	turn.Timestamp = t.now()

	t.entries = append(t.entries[:t.head], turn)
	t.head++
	t.revision++
	return turn
}

func (t *Transcript) ticketFor(user Turn) GenerationTicket {
	return GenerationTicket{
		Seq:        user.Seq + 1,
		Revision:   t.revision,
		UserTurnID: user.ID,
	}
}
