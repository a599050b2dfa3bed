// Package guard classifies model-proposed shell commands before dispatch.
// The classifier is a denylist-plus-heuristic design: one destructive verb
// is always refused, a fixed whitelist of filesystem verbs has its path
// arguments confined to the project directory, and any drive-qualified
// token is validated as a path. Unknown verbs without path-looking tokens
// pass by default; deployments that need a stricter posture layer the
// policy package on top.
package guard
