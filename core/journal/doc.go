// Package journal keeps an audit trail of applied catalog mutations in MySQL.
//
// Each applied plan becomes one Run row holding the action, the target, the
// counts and the per-item errors as JSON. Dry runs and unconfirmed plans are
// never recorded. Write failures are logged as warnings and do not affect the
// run itself.
package journal
