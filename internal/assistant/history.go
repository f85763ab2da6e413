package assistant

// HistoryWindowSize is how many past turns the chat context keeps.
const HistoryWindowSize = 5

// Turn is one user message and the assistant's reply.
type Turn struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// Window is a fixed-capacity ring of the most recent turns. Pushing onto a
// full window drops the oldest turn.
type Window struct {
	turns [HistoryWindowSize]Turn
	start int
	size  int
}

// NewWindow returns a window over the tail of history.
func NewWindow(history []Turn) *Window {
	w := &Window{}
	for _, t := range history {
		w.Push(t)
	}
	return w
}

// Push appends a turn.
func (w *Window) Push(t Turn) {
	if w.size < HistoryWindowSize {
		w.turns[(w.start+w.size)%HistoryWindowSize] = t
		w.size++
		return
	}
	w.turns[w.start] = t
	w.start = (w.start + 1) % HistoryWindowSize
}

// Len returns the number of retained turns.
func (w *Window) Len() int { return w.size }

// Turns returns the retained turns, oldest first.
func (w *Window) Turns() []Turn {
	out := make([]Turn, w.size)
	for i := range out {
		out[i] = w.turns[(w.start+i)%HistoryWindowSize]
	}
	return out
}
