package names

type Milliseconds = int64

type Bytes = int64
type UUIDv4 = string

// like huf#bytes:9e2a51f0c3d4b7a1
type ArtifactKey = string
