package object

import (
	"container/heap"
	"fmt"
	"iter"
)

// CommitEntry is one commit yielded by WalkCommits.
type CommitEntry struct {
	Hash   Hash
	Commit *Commit
}

type commitQueueItem struct {
	hash Hash
	// when is the commit's own time clamped to its child's, so a parent
	// never outranks the child that led to it.
	when   int64
	commit *Commit
	seq    uint64
}

type commitMaxHeap []commitQueueItem

func (h commitMaxHeap) Len() int { return len(h) }

func (h commitMaxHeap) Less(i, j int) bool {
	if h[i].when == h[j].when {
		return h[i].seq < h[j].seq
	}
	return h[i].when > h[j].when
}

func (h commitMaxHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *commitMaxHeap) Push(x any) {
	*h = append(*h, x.(commitQueueItem))
}

func (h *commitMaxHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// WalkCommits lazily walks history from starts, newest first. Every
// reachable commit is yielded exactly once even when merges make it
// reachable along several paths, and a cycle in a corrupted repository
// terminates instead of looping. On error the sequence yields the error once
// and stops.
func WalkCommits(g Getter, starts ...Hash) iter.Seq2[CommitEntry, error] {
	return func(yield func(CommitEntry, error) bool) {
		var (
			queue  commitMaxHeap
			queued = make(map[Hash]struct{})
			seq    uint64
		)
		push := func(h Hash, ceiling int64, bounded bool) error {
			if _, ok := queued[h]; ok {
				return nil
			}
			queued[h] = struct{}{}
			c, err := LoadCommit(g, h)
			if err != nil {
				return fmt.Errorf("walk commits: %w", err)
			}
			when := c.CommitTime()
			if bounded && when > ceiling {
				when = ceiling
			}
			seq++
			heap.Push(&queue, commitQueueItem{hash: h, when: when, commit: c, seq: seq})
			return nil
		}

		for _, h := range starts {
			if err := push(h, 0, false); err != nil {
				yield(CommitEntry{}, err)
				return
			}
		}
		for queue.Len() > 0 {
			item := heap.Pop(&queue).(commitQueueItem)
			if !yield(CommitEntry{Hash: item.hash, Commit: item.commit}, nil) {
				return
			}
			for _, p := range item.commit.Parents() {
				if err := push(p, item.when, true); err != nil {
					yield(CommitEntry{}, err)
					return
				}
			}
		}
	}
}

// Log collects up to limit commits from WalkCommits. A limit <= 0 means no
// limit.
func Log(g Getter, start Hash, limit int) ([]CommitEntry, error) {
	var out []CommitEntry
	for entry, err := range WalkCommits(g, start) {
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
