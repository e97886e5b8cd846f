package queue

// Key layout under the configured prefix:
//
//	<prefix>:ready:<queue>                   list of ready job blobs
//	<prefix>:processing:<queue>:<consumer>   in-flight jobs for one consumer
//	<prefix>:delayed                         zset scored by run-at time
//	<prefix>:retry                           zset scored by next-attempt time
//	<prefix>:dead                            list of exhausted jobs
//	<prefix>:unique:<task>:<key>             NX marker for unique enqueues
type keys struct {
	prefix string
}

func (k keys) ready(queue string) string { return k.prefix + ":ready:" + queue }

func (k keys) processing(queue, consumer string) string {
	return k.prefix + ":processing:" + queue + ":" + consumer
}

func (k keys) delayed() string { return k.prefix + ":delayed" }

func (k keys) retry() string { return k.prefix + ":retry" }

func (k keys) dead() string { return k.prefix + ":dead" }

func (k keys) unique(task, uniqueKey string) string {
	return k.prefix + ":unique:" + task + ":" + uniqueKey
}
