package trainer

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/interval"
)

type uiModelPersistenceData struct {
	PreferredPreset interval.PresetID `json:"preferred_preset,omitempty"`
	LastMode        *UIMode           `json:"last_mode,omitempty"`
}

// uiModelPersistence remembers UI choices between runs. Failures are logged and ignored.
type uiModelPersistence struct {
	filePath string
	mu       sync.Mutex
	data     uiModelPersistenceData
	logger   *log.Logger
}

func newUIModelPersistence(filePath string, logger *log.Logger) *uiModelPersistence {
	p := &uiModelPersistence{
		filePath: filePath,
		logger:   logger,
	}
	p.load()
	return p
}

func (p *uiModelPersistence) getPreferredPreset() (interval.PresetID, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.data.PreferredPreset
	p.logger.Printf("UIModelPersistence: getPreferredPreset -> %q", id)
	return id, id != ""
}

func (p *uiModelPersistence) setPreferredPreset(id interval.PresetID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data.PreferredPreset == id {
		return
	}
	p.logger.Printf("UIModelPersistence: setPreferredPreset -> %q", id)
	p.data.PreferredPreset = id
	p.save()
}

func (p *uiModelPersistence) getLastMode() (UIMode, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data.LastMode == nil {
		return UIModeTraining, false
	}
	if _, ok := GetUIModeInfo(*p.data.LastMode); !ok {
		return UIModeTraining, false
	}
	return *p.data.LastMode, true
}

func (p *uiModelPersistence) setLastMode(mode UIMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data.LastMode != nil && *p.data.LastMode == mode {
		return
	}
	p.data.LastMode = &mode
	p.save()
}

func (p *uiModelPersistence) load() {
	p.data = uiModelPersistenceData{}
	if p.filePath == "" {
		return
	}
	raw, err := os.ReadFile(p.filePath)
	if err != nil {
		p.logger.Printf("UIModelPersistence: load %s (no existing file)", p.filePath)
		return
	}
	if err := json.Unmarshal(raw, &p.data); err != nil {
		p.logger.Printf("UIModelPersistence: load %s failed to parse: %v", p.filePath, err)
		p.data = uiModelPersistenceData{}
		return
	}
	p.logger.Printf("UIModelPersistence: load %s -> preset %q", p.filePath, p.data.PreferredPreset)
}

// save writes the file. MUST be called with mu held.
func (p *uiModelPersistence) save() {
	if p.filePath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(p.filePath), 0755); err != nil {
		p.logger.Printf("UIModelPersistence: save mkdir failed: %v", err)
		return
	}
	raw, err := json.MarshalIndent(p.data, "", "  ")
	if err != nil {
		p.logger.Printf("UIModelPersistence: save marshal failed: %v", err)
		return
	}
	if err := os.WriteFile(p.filePath, raw, 0644); err != nil {
		p.logger.Printf("UIModelPersistence: save %s failed: %v", p.filePath, err)
	}
}
