package quotation

import (
	"fmt"
	"sync"
	"time"
)

// DateLayout is the quotation date format.
const DateLayout = "2006-01-02"

// Numberer issues document numbers of the form DDMMYYYYNNN where NNN restarts every day.
type Numberer struct {
	Now func() time.Time

	mu      sync.Mutex
	day     string
	counter int
}

func (n *Numberer) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now()
}

// Next returns the next number together with the date it was issued on.
func (n *Numberer) Next() (number string, date string) {
	t := n.now()
	day := t.Format("02012006")

	n.mu.Lock()
	defer n.mu.Unlock()
	if day != n.day {
		n.day = day
		n.counter = 0
	}
	n.counter++
	return fmt.Sprintf("%s%03d", day, n.counter), t.Format(DateLayout)
}
