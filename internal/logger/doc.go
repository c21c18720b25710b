// Package logger wraps zap. A global sugared logger serves contexts that
// carry none; partition loops get a named child through WithName so every
// line says which partition wrote it.
package logger
