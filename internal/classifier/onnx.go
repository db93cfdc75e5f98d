package classifier

import (
	"context"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"screening-workers/internal/scoring"
)

// ONNXConfig locates a classifier exported to ONNX (float32[N,3] in, int64[N] label out).
type ONNXConfig struct {
	ModelPath         string
	SharedLibraryPath string
	InputName         string
	OutputName        string
}

// The ONNX Runtime environment is process-wide. Models share it and the last one
// closed tears it down, but only when this package initialized it.
var (
	envMu    sync.Mutex
	envRefs  int
	envOwned bool
)

func acquireEnvironment(sharedLibraryPath string) error {
	envMu.Lock()
	defer envMu.Unlock()

	if envRefs == 0 && !ort.IsInitialized() {
		if sharedLibraryPath != "" {
			ort.SetSharedLibraryPath(sharedLibraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("initialize onnxruntime: %w", err)
		}
		envOwned = true
	}
	envRefs++
	return nil
}

func releaseEnvironment() error {
	envMu.Lock()
	defer envMu.Unlock()

	if envRefs == 0 {
		return nil
	}
	envRefs--
	if envRefs > 0 || !envOwned {
		return nil
	}
	envOwned = false
	return ort.DestroyEnvironment()
}

// ONNXModel runs a local ONNX classifier. The session is loaded once and
// serialized behind a mutex.
type ONNXModel struct {
	cfg     ONNXConfig
	session *ort.DynamicAdvancedSession
	mu      sync.Mutex
}

// NewONNXModel initializes the ONNX Runtime environment (once per process) and
// loads the model artifact.
func NewONNXModel(cfg ONNXConfig) (*ONNXModel, error) {
	if cfg.InputName == "" {
		cfg.InputName = "float_input"
	}
	if cfg.OutputName == "" {
		cfg.OutputName = "label"
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("model artifact: %w", err)
	}

	if err := acquireEnvironment(cfg.SharedLibraryPath); err != nil {
		return nil, err
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{cfg.InputName}, []string{cfg.OutputName}, nil)
	if err != nil {
		_ = releaseEnvironment()
		return nil, fmt.Errorf("load onnx session %s: %w", cfg.ModelPath, err)
	}

	return &ONNXModel{cfg: cfg, session: session}, nil
}

func (m *ONNXModel) Predict(ctx context.Context, rows []scoring.CategoryScores) ([]int, error) {
	if len(rows) == 0 {
		return []int{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := make([]float32, 0, len(rows)*3)
	for _, row := range rows {
		for _, v := range features(row) {
			data = append(data, float32(v))
		}
	}

	n := int64(len(rows))
	input, err := ort.NewTensor(ort.NewShape(n, 3), data)
	if err != nil {
		return nil, fmt.Errorf("input tensor: %w", err)
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[int64](ort.NewShape(n))
	if err != nil {
		return nil, fmt.Errorf("output tensor: %w", err)
	}
	defer output.Destroy()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, fmt.Errorf("onnx session closed")
	}
	if err := m.session.Run([]ort.Value{input}, []ort.Value{output}); err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}

	raw := output.GetData()
	labels := make([]int, len(raw))
	for i, v := range raw {
		labels[i] = int(v)
	}
	return labels, nil
}

// Close destroys the session and releases this model's hold on the ONNX Runtime
// environment.
func (m *ONNXModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	err := m.session.Destroy()
	m.session = nil
	if envErr := releaseEnvironment(); err == nil {
		err = envErr
	}
	return err
}
