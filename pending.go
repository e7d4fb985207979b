package gotrail

import (
	"github.com/mickamy/gotrail/internal/buffer"
)

// Pending holds the actions computed by BeforePersist until AfterPersist flushes them.
// It belongs to a single save call and must end with either AfterPersist or Discard.
type Pending struct {
	entityID any
	buf      *buffer.Buffer[Action]
	unlock   func()
}

func newPending(entityID any, unlock func()) *Pending {
	if unlock == nil {
		unlock = func() {}
	}
	return &Pending{entityID: entityID, buf: buffer.New[Action](), unlock: unlock}
}

// Actions returns a copy of the buffered actions.
func (p *Pending) Actions() []Action {
	if p == nil {
		return nil
	}
	return p.buf.Items()
}

// Len reports the number of buffered actions.
func (p *Pending) Len() int {
	if p == nil {
		return 0
	}
	return p.buf.Len()
}

// Discard drops the buffered actions unpersisted. Use it when the host write fails or is cancelled.
func (p *Pending) Discard() {
	if p == nil {
		return
	}
	p.buf.Reset()
	p.unlock()
}

func (p *Pending) drain() []Action {
	defer p.unlock()
	return p.buf.Drain()
}
