// Package broadcast delivers server events to WebSocket subscribers over
// named channels, with an optional Redis pub/sub backplane for multi-node
// fan-out.
//
// Channel names follow the pusher-style convention: "private-" and
// "presence-" prefixes require the configured Authorizer to approve each
// subscription; presence channels additionally track a Member per socket
// and emit join/leave events with a members snapshot on subscribe.
//
//	b := broadcast.New(
//		broadcast.WithRedis(client),
//		broadcast.WithAuthorizer(func(r *http.Request, channel string) (*broadcast.Member, error) {
//			user, err := currentUser(r)
//			if err != nil {
//				return nil, err
//			}
//			return &broadcast.Member{ID: user.ID, Info: map[string]any{"name": user.Name}}, nil
//		}),
//	)
//	b.Start(ctx)
//	mux.Handle("/ws", b.Handler())
//
//	b.Broadcast(ctx, "orders", "order.created", order)
//
// Clients speak a small JSON protocol: {"action":"subscribe","channel":c},
// {"action":"unsubscribe","channel":c}, and {"action":"publish","channel":c,
// "event":e,"payload":p} for client events on authorized channels. Server
// frames carry channel, event, and payload.
//
// Presence membership is tracked per node; the snapshot delivered on
// subscribe covers local members, while join/leave events propagate
// through the backplane.
package broadcast
