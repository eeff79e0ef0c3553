package cache

// lruEntry is a cached value threaded on its shard's recency list.
type lruEntry[K comparable, V any] struct {
	key        K
	value      V
	prev, next *lruEntry[K, V]
}

// lruList orders entries from most (head) to least (tail) recently used.
// The list is not thread-safe; the owning shard holds its lock.
type lruList[K comparable, V any] struct {
	head, tail *lruEntry[K, V]
	len        int
}

// Len returns the number of entries on the list.
func (l *lruList[K, V]) Len() int {
	return l.len
}

// pushFront links e as the most recently used entry.
func (l *lruList[K, V]) pushFront(e *lruEntry[K, V]) {
	e.prev = nil
	e.next = l.head
	if l.head != nil {
		l.head.prev = e
	}
	l.head = e
	if l.tail == nil {
		l.tail = e
	}
	l.len++
}

// touch marks e as most recently used.
func (l *lruList[K, V]) touch(e *lruEntry[K, V]) {
	if e == l.head {
		return
	}
	l.remove(e)
	l.pushFront(e)
}

// remove unlinks e.
func (l *lruList[K, V]) remove(e *lruEntry[K, V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		l.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		l.tail = e.prev
	}
	e.prev, e.next = nil, nil
	l.len--
}

// popBack unlinks and returns the least recently used entry, or nil.
func (l *lruList[K, V]) popBack() *lruEntry[K, V] {
	e := l.tail
	if e != nil {
		l.remove(e)
	}
	return e
}

// clear drops every entry.
func (l *lruList[K, V]) clear() {
	l.head, l.tail, l.len = nil, nil, 0
}
