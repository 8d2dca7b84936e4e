package interfaces

type CompressorInterface interface {
	Compress(val []byte) ([]byte, error)
	Decompress(val []byte) ([]byte, error)
	Close()
}

// PersisterInterface is the slice of the scheduler the controllers
// need: flush the current snapshot to disk right now.
type PersisterInterface interface {
	Persist() error
}
