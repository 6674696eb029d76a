// Package logger wraps zap with a global sugared console logger and
// context helpers (ToContext, FromContext, WithName, WithKV) so that every
// step of an update run logs through a scoped, structured logger.
package logger
