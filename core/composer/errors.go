package composer

// Stage names the pipeline step an export failed in, so device-import
// problems can be traced to rasterization vs encoding vs audio plumbing.
type Stage string

const (
	StageProbe     Stage = "probe"
	StageRasterize Stage = "rasterize"
	StageEncode    Stage = "encode"
	StageTransform Stage = "transform"
	StageTranscode Stage = "transcode"
	StageTag       Stage = "tag"
)

// Error is an export failure annotated with its stage.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return string(e.Stage) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
