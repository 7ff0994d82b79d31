package cascade

// ActiveSet is a bounded FIFO queue of node ids awaiting their transmission
// round. Capacity is fixed at construction to nodeCount+1 slots; the spare
// slot disambiguates empty from full via the head/tail indices. Providers are
// serviced in strict discovery order, which is what keeps stop-criterion and
// cascade-link accounting well defined.
//
// A node enters the queue exactly once, on its uninfected-to-infected
// transition, so the queue can never overflow as long as capacity covers the
// node count. Push on a full queue and Pop on an empty queue are programming
// errors and panic.
type ActiveSet struct {
	nodes []int
	head  int
	tail  int
}

// NewActiveSet creates a queue able to hold nodeCount entries.
func NewActiveSet(nodeCount int) *ActiveSet {
	return &ActiveSet{nodes: make([]int, nodeCount+1)}
}

// Empty reports whether the queue holds no entries.
func (s *ActiveSet) Empty() bool { return s.head == s.tail }

// Full reports whether the queue is at capacity.
func (s *ActiveSet) Full() bool { return s.head == (s.tail+1)%len(s.nodes) }

// Len returns the number of queued entries.
func (s *ActiveSet) Len() int {
	if s.tail >= s.head {
		return s.tail - s.head
	}
	return s.tail + len(s.nodes) - s.head
}

// Push appends a node id.
func (s *ActiveSet) Push(node int) {
	if s.Full() {
		panic("cascade: push on full active set")
	}
	s.nodes[s.tail] = node
	s.tail = (s.tail + 1) % len(s.nodes)
}

// Pop removes and returns the oldest node id.
func (s *ActiveSet) Pop() int {
	if s.Empty() {
		panic("cascade: pop on empty active set")
	}
	node := s.nodes[s.head]
	s.head = (s.head + 1) % len(s.nodes)
	return node
}
