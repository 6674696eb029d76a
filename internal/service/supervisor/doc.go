// Package supervisor stops and starts the game server inside a named
// terminal session (GNU screen or tmux) and waits for it to shut down.
//
// Supervisor is the capability interface; Controller adds the recovery
// policy of an update run: stop/start failures are logged and swallowed,
// while the shutdown wait is bounded by a timeout and the context.
package supervisor
