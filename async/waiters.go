package async

// waiterNode is an immutable cons cell. Snapshots share tails freely, so a
// node is never modified once published.
type waiterNode struct {
	waiter *waiter
	next   *waiterNode
}

func reverseNodes(n *waiterNode) *waiterNode {
	var out *waiterNode
	for ; n != nil; n = n.next {
		out = &waiterNode{waiter: n.waiter, next: out}
	}
	return out
}

// withoutWaiter returns the list without w, copying the cells in front of it.
func withoutWaiter(head *waiterNode, w *waiter) (*waiterNode, bool) {
	var prefix []*waiter
	for n := head; n != nil; n = n.next {
		if n.waiter != w {
			prefix = append(prefix, n.waiter)
			continue
		}
		rest := n.next
		for i := len(prefix) - 1; i >= 0; i-- {
			rest = &waiterNode{waiter: prefix[i], next: rest}
		}
		return rest, true
	}
	return head, false
}

// waiterStack is a persistent LIFO stack of waiters.
type waiterStack struct {
	top  *waiterNode
	size int
}

func (s waiterStack) push(w *waiter) waiterStack {
	return waiterStack{top: &waiterNode{waiter: w, next: s.top}, size: s.size + 1}
}

// popN removes up to n waiters, most recently pushed first.
func (s waiterStack) popN(n int) ([]*waiter, waiterStack) {
	if n > s.size {
		n = s.size
	}
	popped := make([]*waiter, 0, n)
	top := s.top
	for range n {
		popped = append(popped, top.waiter)
		top = top.next
	}
	return popped, waiterStack{top: top, size: s.size - n}
}

func (s waiterStack) all() []*waiter {
	popped, _ := s.popN(s.size)
	return popped
}

func (s waiterStack) without(w *waiter) (waiterStack, bool) {
	top, ok := withoutWaiter(s.top, w)
	if !ok {
		return s, false
	}
	return waiterStack{top: top, size: s.size - 1}, true
}

// waiterQueue is a persistent FIFO queue of waiters kept as two lists: front
// holds the oldest waiters in dequeue order, back the newest in reverse order.
type waiterQueue struct {
	front *waiterNode
	back  *waiterNode
	size  int
}

func (q waiterQueue) push(w *waiter) waiterQueue {
	return waiterQueue{front: q.front, back: &waiterNode{waiter: w, next: q.back}, size: q.size + 1}
}

// pop removes the oldest waiter. It must not be called on an empty queue.
func (q waiterQueue) pop() (*waiter, waiterQueue) {
	front, back := q.front, q.back
	if front == nil {
		front, back = reverseNodes(back), nil
	}
	return front.waiter, waiterQueue{front: front.next, back: back, size: q.size - 1}
}

func (q waiterQueue) without(w *waiter) (waiterQueue, bool) {
	if front, ok := withoutWaiter(q.front, w); ok {
		return waiterQueue{front: front, back: q.back, size: q.size - 1}, true
	}
	if back, ok := withoutWaiter(q.back, w); ok {
		return waiterQueue{front: q.front, back: back, size: q.size - 1}, true
	}
	return q, false
}
