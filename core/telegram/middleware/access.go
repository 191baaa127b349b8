package middleware

import tele "gopkg.in/telebot.v4"

// AdminOptions defines how admin-only checks should behave. IsAdmin is
// consulted with the sender's username; a nil IsAdmin denies everyone.
type AdminOptions struct {
	IsAdmin  func(username string) bool
	OnReject tele.HandlerFunc
}

// AdminOnlyMiddleware ensures that only roster admins can invoke downstream handlers.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil || opts.IsAdmin == nil || !opts.IsAdmin(sender.Username) {
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}

// BanGateOptions configures the ban gate. OnReject runs instead of the
// downstream handler for banned senders; when nil the update is dropped.
type BanGateOptions struct {
	IsBanned func(username string) bool
	OnReject tele.HandlerFunc
}

// BanGateMiddleware stops updates from banned users before any handler runs.
func BanGateMiddleware(opts BanGateOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil || opts.IsBanned == nil || !opts.IsBanned(sender.Username) {
				return next(c)
			}
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}
