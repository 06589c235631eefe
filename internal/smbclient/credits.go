package smbclient

// creditPool tracks the send window granted by the server. A new connection
// starts with a single credit so the negotiate request can go out; every
// response header tops the pool up with the server's grant.
type creditPool struct {
	granted uint16
}

func newCreditPool() *creditPool {
	return &creditPool{granted: 1}
}

func (p *creditPool) available() uint16 { return p.granted }

// take consumes charge credits if the pool covers them
func (p *creditPool) take(charge uint16) bool {
	if p.granted < charge {
		return false
	}
	p.granted -= charge
	return true
}

func (p *creditPool) grant(n uint16) {
	p.granted += n
}

// queuedSend is an assembled message waiting for credits. Its message ids
// were assigned at build time, so queued messages still go out in build
// order once the window reopens.
type queuedSend struct {
	payload []byte
	charge  uint16
}

// sendQueue holds messages in FIFO order until credits cover them
type sendQueue struct {
	items []queuedSend
}

func (q *sendQueue) push(payload []byte, charge uint16) {
	q.items = append(q.items, queuedSend{payload: payload, charge: charge})
}

// peek returns the head without removing it; ok is false when empty
func (q *sendQueue) peek() (queuedSend, bool) {
	if len(q.items) == 0 {
		return queuedSend{}, false
	}
	return q.items[0], true
}

func (q *sendQueue) pop() {
	q.items = q.items[1:]
}

func (q *sendQueue) len() int { return len(q.items) }

func (q *sendQueue) clear() { q.items = nil }
