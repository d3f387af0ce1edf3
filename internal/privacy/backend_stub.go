//go:build !onnx

package privacy

import "fmt"

// ONNXAvailable reports whether the ONNX name backend is compiled in.
const ONNXAvailable = false

// NewModelRecognizer requires the onnx build tag.
func NewModelRecognizer(modelPath string) (NameRecognizer, error) {
	return nil, fmt.Errorf("onnx name recognizer not available: build with -tags onnx (model path: %s)", modelPath)
}
