package common

type Command struct {
	Operation string   `json:"operation"`
	Args      []string `json:"args"`
}
