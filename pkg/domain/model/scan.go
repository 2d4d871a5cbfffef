package model

// ScannedFile is a regular file found by a directory scan
type ScannedFile struct {
	Path string `json:"path"` // Absolute path as joined during traversal
	Size uint64 `json:"size"` // Byte size, 0 when metadata could not be read
}

// ReadDirArgs are the arguments of the read_dir command
type ReadDirArgs struct {
	Path       string   `json:"path"`
	Recursive  bool     `json:"recursive"`
	Extensions []string `json:"extensions"`
}
