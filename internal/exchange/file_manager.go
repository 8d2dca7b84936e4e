package exchange

import (
	"os"

	json "github.com/goccy/go-json"

	"gxd/internal/exchange/interfaces"
	"gxd/internal/models"
	"gxd/internal/providers"
	"gxd/internal/services"
)

// FileManager persists the full account table plus session pointer as
// one compressed JSON snapshot. Saves replace the previous file
// entirely; there is no merge or partial write.
type FileManager struct {
	service    services.AccountServiceInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, service services.AccountServiceInterface, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		service:    service,
		logger:     logger,
	}
}

func (f *FileManager) SaveToFile(fileName string) error {
	snapshot := f.service.GetSnapshot()
	envelope := &models.StorageV2{
		Version:  models.StorageVersion,
		Accounts: snapshot.Accounts,
		Session:  snapshot.Session,
	}

	jsonData, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

func (f *FileManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return err
	}

	// Current format: versioned envelope
	var envelope models.StorageV2
	if err := json.Unmarshal(decompressedData, &envelope); err == nil && envelope.Accounts != nil {
		f.service.PutSnapshot(envelope.Accounts, envelope.Session)
		return nil
	}

	// Legacy format: bare username-to-account map, no session
	f.logger.Warnf(providers.TypeApp, "Inconsistent DB found, try to migrate from old data format")
	var accounts map[string]*models.Account
	if err := json.Unmarshal(decompressedData, &accounts); err != nil {
		f.logger.Warnf(providers.TypeApp, "Migration failed")
		return err
	}
	f.logger.Warnf(providers.TypeApp, "Migration from legacy format successful")
	f.service.PutSnapshot(accounts, "")

	return nil
}
