package response

type APIError struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// BlockFailure locates a generation error in the workspace.
type BlockFailure struct {
	BlockID   string `json:"blockId"`
	BlockType string `json:"blockType"`
}
