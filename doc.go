// Package masto is a Go client for the Mastodon API.
//
// # Overview
//
// The package covers app registration, password-grant login, reading
// timelines, statuses, accounts and notifications, posting statuses and
// follows, and media uploads. Every call flows through a single request
// engine that transparently handles the service's rate-limit protocol.
//
// # Quick start
//
// Register an app once, log in, and start tooting:
//
//	clientID, clientSecret, err := masto.RegisterApp(ctx, &masto.AppRegistration{
//		ClientName: "my bot",
//		ToFile:     "clientcred.txt",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := masto.NewClient(&masto.Config{ClientID: "clientcred.txt"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	if _, err := client.LogIn(ctx, "user@example.com", "hunter2", nil, "usercred.txt"); err != nil {
//		log.Fatal(err)
//	}
//
//	if _, err := client.Toot(ctx, "hello fediverse"); err != nil {
//		log.Fatal(err)
//	}
//
// On later runs, pass the persisted files directly:
//
//	client, err := masto.NewClient(&masto.Config{
//		ClientID:    "clientcred.txt",
//		AccessToken: "usercred.txt",
//	})
//
// # Rate limiting
//
// The server allots a rolling window of calls and reports it through the
// X-RateLimit-Limit, X-RateLimit-Remaining and X-RateLimit-Reset headers on
// every response. Config.RatelimitMethod selects how a session reacts:
//
//   - RatelimitThrow: a throttled call fails immediately with a
//     RatelimitError and is not retried.
//   - RatelimitWait (default): a throttled call sleeps until the declared
//     reset and is retried until it succeeds or fails for another reason.
//   - RatelimitPace: requests are proactively spaced out so the limit is
//     generally never hit; Config.RatelimitPaceFactor tunes how close to the
//     exact pace the session sails.
//
// Even under wait and pace, calls can still fail for network or API
// reasons. The wait and pace bookkeeping is not synchronized; run one call
// at a time per Client.
//
// # Errors
//
// All failures are typed values from github.com/mastokit/masto/pkg/errors:
// IllegalArgumentError, NetworkError, APIError and RatelimitError. Use
// errors.As to classify.
package masto
