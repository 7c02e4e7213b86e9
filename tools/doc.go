// Package tools defines tool contracts and implementations.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, handler.
//   - Result: tool output text tagged as success or error observation.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - Database tools: execute_sql, get_schema, save_data_to_csv.
//   - Invariants: tool_use and its corresponding tool_result remain adjacent within a turn
package tools
