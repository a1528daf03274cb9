package sphincsplus

// import
import (
	"runtime"
	"sync"
)

const leavesPerBatch = 32

// forLeaves calls fn for every leaf index in [0,count). With more than one
// thread the indices are handed out in batches to workers that each own a
// tweakHash clone. A panic in a worker is re-raised after all workers stopped.
func forLeaves(threads int, count uint32, th tweakHash, fn func(th tweakHash, i uint32)) {
	if threads == 0 {
		threads = runtime.NumCPU()
	}
	if batches := int((count + leavesPerBatch - 1) / leavesPerBatch); threads > batches {
		threads = batches
	}
	if threads <= 1 {
		for i := uint32(0); i < count; i++ {
			fn(th, i)
		}
		return
	}
	var (
		wg      sync.WaitGroup
		mux     sync.Mutex
		next    uint32
		failure any
	)
	wg.Add(threads)
	for w := 0; w < threads; w++ {
		go func(th tweakHash) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					mux.Lock()
					if failure == nil {
						failure = r
					}
					next = count
					mux.Unlock()
				}
			}()
			for {
				mux.Lock()
				ours := next
				if next < count {
					next += leavesPerBatch
				}
				mux.Unlock()
				if ours >= count {
					return
				}
				end := min(ours+leavesPerBatch, count)
				for ; ours < end; ours++ {
					fn(th, ours)
				}
			}
		}(th.clone())
	}
	wg.Wait()
	if failure != nil {
		panic(failure)
	}
}
