package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"agribot/internal/model"

	"github.com/fsnotify/fsnotify"
)

// upload is an in-memory source supplied over HTTP, overriding a default file
type upload struct {
	name string
	data []byte
}

// Store owns the loaded tables. Loading is memoized by a content hash of
// both sources, so repeated calls with unchanged sources never re-parse.
// The memo is invalidated by Reset, by a new upload, or by the file watcher.
type Store struct {
	cropPath     string
	districtPath string
	previewRows  int

	mu             sync.RWMutex
	cropUpload     *upload
	districtUpload *upload
	cacheKey       string
	crops          *model.CropTable
	districts      *model.DistrictTable

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewStore creates a store reading from the given default file paths
func NewStore(cropPath, districtPath string, previewRows int) *Store {
	return &Store{
		cropPath:     cropPath,
		districtPath: districtPath,
		previewRows:  previewRows,
	}
}

// Tables returns the loaded tables, parsing the sources only when their
// content has changed since the last successful load.
func (s *Store) Tables() (*model.CropTable, *model.DistrictTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cropName, cropData, err := s.readSource(s.cropUpload, s.cropPath)
	if err != nil {
		return nil, nil, err
	}
	districtName, districtData, err := s.readSource(s.districtUpload, s.districtPath)
	if err != nil {
		return nil, nil, err
	}

	key := contentKey(cropData, districtData)
	if key == s.cacheKey && s.crops != nil && s.districts != nil {
		return s.crops, s.districts, nil
	}

	crops, err := ParseCropTable(cropName, cropData)
	if err != nil {
		return nil, nil, err
	}
	districts, err := ParseDistrictTable(districtName, districtData)
	if err != nil {
		return nil, nil, err
	}

	s.crops = crops
	s.districts = districts
	s.cacheKey = key
	log.Printf("✅ Datasets loaded: %d crops, %d districts", len(crops.Rows), len(districts.Rows))

	return crops, districts, nil
}

// SetCropUpload replaces the crop source with uploaded bytes. The content
// hash in Tables detects the change; re-uploading identical bytes stays a
// cache hit.
func (s *Store) SetCropUpload(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cropUpload = &upload{name: name, data: data}
}

// SetDistrictUpload replaces the district source with uploaded bytes
func (s *Store) SetDistrictUpload(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.districtUpload = &upload{name: name, data: data}
}

// Reset drops any uploads and the memoized tables. The next Tables call
// re-reads the default files.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cropUpload = nil
	s.districtUpload = nil
	s.invalidateLocked()
	log.Printf("🔄 Dataset cache reset")
}

// Status reports row counts and a small preview per table
func (s *Store) Status() model.DatasetStatus {
	crops, districts, err := s.Tables()
	if err != nil {
		msg := err.Error()
		return model.DatasetStatus{
			Crops:     model.TableStatus{Error: msg},
			Districts: model.TableStatus{Error: msg},
		}
	}

	status := model.DatasetStatus{
		Crops:     model.TableStatus{Loaded: true, Rows: len(crops.Rows)},
		Districts: model.TableStatus{Loaded: true, Rows: len(districts.Rows)},
	}
	for i, row := range crops.Rows {
		if i >= s.previewRows {
			break
		}
		status.Crops.Preview = append(status.Crops.Preview, map[string]string{
			colCrop:  row.Crop,
			colCropN: row.Nitrogen,
		})
	}
	for i, row := range districts.Rows {
		if i >= s.previewRows {
			break
		}
		status.Districts.Preview = append(status.Districts.Preview, map[string]string{
			colDistrict: row.District,
			colState:    row.State,
			colSoilN:    strconv.FormatFloat(row.SoilNitrogen, 'f', -1, 64),
		})
	}

	return status
}

// Watch invalidates the memoized tables when either default file changes on
// disk. Uploads are unaffected; they are replaced only via the API.
func (s *Store) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the parent directories so create/rename events are seen even
	// while the files themselves are absent.
	dirs := map[string]bool{
		filepath.Dir(s.cropPath):     true,
		filepath.Dir(s.districtPath): true,
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	s.watcher = watcher
	s.done = make(chan struct{})

	go func() {
		cropPath := filepath.Clean(s.cropPath)
		districtPath := filepath.Clean(s.districtPath)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				name := filepath.Clean(event.Name)
				if name != cropPath && name != districtPath {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				log.Printf("🔄 Dataset file changed on disk: %s", event.Name)
				s.mu.Lock()
				s.invalidateLocked()
				s.mu.Unlock()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("Warning: dataset watcher error: %v", err)
			case <-s.done:
				return
			}
		}
	}()

	return nil
}

// Close stops the file watcher if one is running
func (s *Store) Close() {
	if s.watcher != nil {
		close(s.done)
		s.watcher.Close()
		s.watcher = nil
	}
}

// invalidateLocked drops the memoized tables; callers must hold mu
func (s *Store) invalidateLocked() {
	s.cacheKey = ""
	s.crops = nil
	s.districts = nil
}

// readSource returns the named bytes for a source, preferring an upload
// over the default file.
func (s *Store) readSource(up *upload, path string) (string, []byte, error) {
	if up != nil {
		return up.name, up.data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("%w: %s", ErrSourceMissing, path)
		}
		return "", nil, &ParseError{Source: path, Reason: err.Error()}
	}
	return path, data, nil
}

// contentKey hashes both sources so identical content is a cache hit
// regardless of where it came from.
func contentKey(crop, district []byte) string {
	h := sha256.New()
	h.Write(crop)
	h.Write([]byte{0})
	h.Write(district)
	return hex.EncodeToString(h.Sum(nil))
}
