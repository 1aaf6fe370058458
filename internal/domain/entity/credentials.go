package entity

// Credentials is the resolved secret for a login step. The core only ever
// holds the opaque handle; resolution happens at execution time and the
// secret never enters ContextMemory.
type Credentials struct {
	Site     string
	Username string
	Password string
}

// Screenshot is a captured page image, downscaled for storage.
type Screenshot struct {
	Data   []byte
	Format string
	Width  int
	Height int
}
