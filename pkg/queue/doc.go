// Package queue processes background jobs on Redis lists with retry,
// delayed execution, uniqueness, and cron schedules.
//
// Register tasks with structural typing; the payload type is inferred from
// the Handle signature:
//
//	type SendWelcome struct{ mailer *mailer.Mailer }
//
//	func (t *SendWelcome) Name() string { return "send_welcome" }
//	func (t *SendWelcome) Handle(ctx context.Context, p WelcomePayload) error {
//		return t.mailer.SendTemplate(ctx, "welcome", p.Email, nil)
//	}
//
//	m, err := queue.NewManager(client,
//		queue.WithTask(&SendWelcome{mailer: m}, queue.TaskQueue("email")),
//		queue.WithQueue("email", 5),
//		queue.WithLogger(log),
//	)
//	m.Start(ctx)
//	m.Enqueue(ctx, "send_welcome", WelcomePayload{Email: "a@b.test"})
//
// Jobs flow through ready lists (one per queue) popped with BLMOVE into a
// per-consumer processing list, giving at-least-once delivery. Failed jobs
// re-enter through a retry sorted set with exponential backoff; delayed
// jobs wait in a second sorted set; both are promoted to ready lists by a
// polling loop. Jobs that exhaust their attempts land in a dead-letter
// list for inspection.
//
// Recurring tasks use 5-field cron expressions and deduplicate firings
// across nodes with a per-minute unique key, so running the scheduler on
// every node is safe.
package queue
