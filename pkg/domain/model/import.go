package model

// ImportValidation is the validation outcome of one candidate book path
type ImportValidation struct {
	Path    string  `json:"path"`
	Success bool    `json:"success"`
	Error   *string `json:"error"`
}

// ImportProgress is emitted while validating book files
type ImportProgress struct {
	TotalFiles     int    `json:"total_files"`
	ProcessedFiles int    `json:"processed_files"`
	CurrentFile    string `json:"current_file"`
}

// FindBookFilesArgs are the arguments of the find_book_files command
type FindBookFilesArgs struct {
	Path string `json:"path"`
}

// ValidateBookFilesArgs are the arguments of the validate_book_files command
type ValidateBookFilesArgs struct {
	Paths     []string `json:"paths"`
	ChunkSize int      `json:"chunk_size"`
	Window    string   `json:"window,omitempty"`
}
