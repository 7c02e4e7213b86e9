// Package memory persists a transcript of answered questions.
//
// Persistence model:
//   - One JSON array per file, rewritten whole on every append.
//   - Entries keep the question, the final answer, how the loop ended and the
//     statements sent to execute_sql. Tool outputs are not stored.
package memory
