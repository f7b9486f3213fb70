// Package core provides the dashboard operations shared by the web server
// and the userctl command.
//
// # Architecture
//
// A [Service] ties together the pieces that live in their own packages:
//
//   - users.Source: the ordered, paginated user rows (Postgres or memory).
//   - logs.Source: the paginated log stream.
//   - columns.Epochs: the resolved column set, swapped whole when the field
//     rules change.
//   - fieldrules: the operator's rules file and the formatter registry.
//
// A render pass calls [Service.ListUsers] once. The returned [UserTable]
// carries the epoch loaded at the start of the pass, so a concurrent rules
// reload never mixes two column sets in one page.
//
// # Field Rules Reload
//
// With a rules file and a positive interval, [Service.StartRulesReloader]
// re-reads the file periodically. Unchanged rules keep the current epoch;
// invalid rules are logged and the current epoch keeps serving.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]. Each
// category has a code for support reference:
//
//   - COL001: malformed field rule
//   - RULES001-RULES002: rules file unreadable or rejected
//   - DB001-DB003: database connectivity and timeouts
//   - USR001: user not found
//   - REQ001-REQ002: cancelled or timed out requests
//   - RATE001: rate limited
//   - ERR000: anything else
package core
