// Package core provides the building blocks shared by every aws-login command:
// the error model, the application context, the executable cache, the YAML
// configuration, and backups of the files the tool rewrites.
package core

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// backupTimestampLayout keeps backups taken within the same second distinct.
const backupTimestampLayout = "20060102-150405.000000000"

// BackupManager handles creation and restoration of file backups.
type BackupManager struct {
	backupDir string
}

// NewBackupManager creates a new backup manager.
// If backupDir is empty, uses the default state directory.
func NewBackupManager(backupDir string) *BackupManager {
	if backupDir == "" {
		backupDir = NewConfig().BackupDir
	}

	return &BackupManager{
		backupDir: backupDir,
	}
}

// BackupMetadata contains information about a backup.
type BackupMetadata struct {
	Name          string    `json:"name"`
	OriginalPath  string    `json:"original_path"`
	BackupPath    string    `json:"backup_path"`
	Timestamp     time.Time `json:"timestamp"`
	RestoreMethod string    `json:"restore_method"`
}

// Backup creates a timestamped backup of a file under the named group.
// Returns the backup path and metadata, or an error if the backup fails.
func (bm *BackupManager) Backup(name, filePath string) (string, *BackupMetadata, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return "", nil, fmt.Errorf("source file does not exist: %s", filePath)
	}

	groupDir := filepath.Join(bm.backupDir, name)
	if err := os.MkdirAll(groupDir, 0o750); err != nil {
		return "", nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	now := time.Now()
	backupFilename := fmt.Sprintf("%s.%s.backup", filepath.Base(filePath), now.Format(backupTimestampLayout))
	backupPath := filepath.Join(groupDir, backupFilename)

	if err := copyFile(filePath, backupPath); err != nil {
		return "", nil, fmt.Errorf("failed to copy file: %w", err)
	}

	metadata := &BackupMetadata{
		Name:          name,
		OriginalPath:  filePath,
		BackupPath:    backupPath,
		Timestamp:     now,
		RestoreMethod: "copy",
	}

	if err := bm.writeMetadata(backupPath+".json", metadata); err != nil {
		return backupPath, metadata, fmt.Errorf("failed to write metadata: %w", err)
	}

	return backupPath, metadata, nil
}

// Restore restores a file from a backup.
func (bm *BackupManager) Restore(backupPath string) error {
	metadata, err := bm.readMetadata(backupPath + ".json")
	if err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}

	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup file does not exist: %s", backupPath)
	}

	if err := copyFile(backupPath, metadata.OriginalPath); err != nil {
		return fmt.Errorf("failed to restore file: %w", err)
	}

	return nil
}

// List returns all backups in the named group, newest first.
func (bm *BackupManager) List(name string) ([]*BackupMetadata, error) {
	groupDir := filepath.Join(bm.backupDir, name)

	if _, err := os.Stat(groupDir); os.IsNotExist(err) {
		return []*BackupMetadata{}, nil
	}

	entries, err := os.ReadDir(groupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := make([]*BackupMetadata, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		metadata, err := bm.readMetadata(filepath.Join(groupDir, entry.Name()))
		if err != nil {
			continue
		}

		backups = append(backups, metadata)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})

	return backups, nil
}

// Clean removes old backups in the named group, keeping only the most recent N.
func (bm *BackupManager) Clean(name string, keep int) error {
	backups, err := bm.List(name)
	if err != nil {
		return err
	}

	if len(backups) <= keep {
		return nil
	}

	for _, backup := range backups[keep:] {
		if err := os.Remove(backup.BackupPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove backup: %w", err)
		}
		if err := os.Remove(backup.BackupPath + ".json"); err != nil {
			return fmt.Errorf("failed to remove metadata: %w", err)
		}
	}

	return nil
}

func (bm *BackupManager) writeMetadata(path string, metadata *BackupMetadata) error {
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

func (bm *BackupManager) readMetadata(path string) (*BackupMetadata, error) {
	// #nosec G304 -- path is from internal backup directory structure
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var metadata BackupMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, err
	}

	return &metadata, nil
}

// copyFile copies a file from src to dst.
func copyFile(src, dst string) (err error) {
	// #nosec G304 -- paths are from internal configuration
	sourceFile, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sourceFile.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	sourceInfo, err := sourceFile.Stat()
	if err != nil {
		return err
	}

	// #nosec G304 -- paths are from internal configuration
	destFile, err := os.OpenFile(filepath.Clean(dst), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, sourceInfo.Mode())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := destFile.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	_, err = io.Copy(destFile, sourceFile)
	return err
}
