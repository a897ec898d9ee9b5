package core

// GenerateNTasks returns n RawTasks, each a closure binding fn(i) for i in
// [0, n). It carries no concurrency semantics beyond what Pool.Execute
// provides; it exists purely so fan-out benchmarks and examples can build a
// shardable batch without hand-writing n closures.
func GenerateNTasks(n int, fn func(i int)) []RawTask {
	if n <= 0 {
		return nil
	}

	tasks := make([]RawTask, n)
	for i := range n {
		i := i
		tasks[i] = func() { fn(i) }
	}
	return tasks
}
