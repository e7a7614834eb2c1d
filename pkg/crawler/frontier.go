package crawler

import "container/list"

// frontier is the FIFO queue of pending URLs plus the set of URLs already
// dequeued. It is owned by a single Crawl call and never shared.
type frontier struct {
	queue   *list.List
	visited map[string]struct{}
}

func newFrontier() *frontier {
	return &frontier{
		queue:   list.New(),
		visited: make(map[string]struct{}),
	}
}

// push appends u unless it has already been visited. The queue may still
// hold duplicates; pop order settles them.
func (f *frontier) push(u string) {
	if _, ok := f.visited[u]; ok {
		return
	}
	f.queue.PushBack(u)
}

// pop removes the oldest queued URL that has not been visited yet.
func (f *frontier) pop() (string, bool) {
	f.skipVisited()
	elem := f.queue.Front()
	if elem == nil {
		return "", false
	}
	f.queue.Remove(elem)
	return elem.Value.(string), true
}

// hasNext reports whether pop would return a URL.
func (f *frontier) hasNext() bool {
	f.skipVisited()
	return f.queue.Len() > 0
}

// skipVisited drops entries at the head that were visited after being queued.
func (f *frontier) skipVisited() {
	for elem := f.queue.Front(); elem != nil; elem = f.queue.Front() {
		if _, ok := f.visited[elem.Value.(string)]; !ok {
			return
		}
		f.queue.Remove(elem)
	}
}

// markVisited records u and reports false if it was already there.
func (f *frontier) markVisited(u string) bool {
	if _, ok := f.visited[u]; ok {
		return false
	}
	f.visited[u] = struct{}{}
	return true
}

func (f *frontier) visitedCount() int {
	return len(f.visited)
}
