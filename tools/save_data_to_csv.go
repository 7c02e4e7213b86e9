package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/petasbytes/sqlagent/internal/csvexport"
)

type SaveDataToCSVInput struct {
	Data     any    `json:"data" jsonschema_description:"Rows to save: a list of lists, or the string returned by execute_sql such as [(1, 'Alice'), (2, 'Bob')]."`
	Filename string `json:"filename" jsonschema_description:"Output file name; .csv is added when missing."`
}

// NotRowsMessage is returned when data is neither a list of rows nor tuple-list text.
const NotRowsMessage = "Error: Data must be a list of tuples or lists."

const saveDataToCSVDescription = `Save tabular query results to a CSV file in the export directory.
Inputs:
  - data: a list of tuples/lists, OR the string returned by execute_sql (e.g. [(1, 'Alice'), (2, 'Bob')]).
  - filename: desired output file name (string; the .csv extension is added automatically).
Output: a success message with the absolute path of the file, or an error description.`

// SaveDataToCSV writes data as CSV rows to dir/filename. data may be a slice
// of rows or the tuple-list text produced by ExecuteSQL; anything else is
// rejected before a file is touched.
func SaveDataToCSV(dir string, data any, filename string) Result {
	rows, err := csvexport.Normalize(data)
	if err != nil {
		return fail(NotRowsMessage)
	}
	path, err := csvexport.Save(dir, rows, filename)
	if err != nil {
		return fail("Error saving CSV: " + err.Error())
	}
	return ok("Data saved successfully to: " + path)
}

// decodeSaveInput reads the tool input with gjson so numbers keep their
// integer or float identity and data may be either an array or a string.
func decodeSaveInput(input json.RawMessage) (data any, filename string, err error) {
	if len(input) == 0 {
		input = json.RawMessage("{}")
	}
	if !gjson.ValidBytes(input) {
		return nil, "", errors.New("malformed JSON")
	}
	doc := gjson.ParseBytes(input)
	if !doc.IsObject() {
		return nil, "", errors.New("expected a JSON object")
	}
	fn := doc.Get("filename")
	if fn.Type != gjson.String {
		return nil, "", errors.New("filename must be a string")
	}
	return jsonValue(doc.Get("data")), fn.Str, nil
}

func jsonValue(r gjson.Result) any {
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Number:
		if n, err := strconv.ParseInt(r.Raw, 10, 64); err == nil {
			return n
		}
		return r.Num
	case gjson.JSON:
		if r.IsArray() {
			arr := r.Array()
			out := make([]any, len(arr))
			for i, el := range arr {
				out[i] = jsonValue(el)
			}
			return out
		}
		return r.Value()
	default:
		return nil
	}
}

func saveDataToCSVTool(env Env) ToolDefinition {
	return ToolDefinition{
		Name:        "save_data_to_csv",
		Description: saveDataToCSVDescription,
		InputSchema: GenerateSchema[SaveDataToCSVInput](),
		Function: func(ctx context.Context, input json.RawMessage) Result {
			data, filename, err := decodeSaveInput(input)
			if err != nil {
				return fail("Error: invalid input: " + err.Error())
			}
			env.logger().Info("saving csv", "filename", filename, "dir", env.outputDir())
			res := SaveDataToCSV(env.outputDir(), data, filename)
			if res.IsError {
				env.logger().Warn("csv export failed", "filename", filename, "error", res.Content)
			}
			return res
		},
	}
}
