package cli

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmreicha/aws-login/internal/core"
	"github.com/jmreicha/aws-login/internal/templates"
)

// maxTemplatesSize bounds the downloaded document.
const maxTemplatesSize = 10 << 20

type resolution string

const (
	resolveCancel  resolution = "cancel"
	resolveMerge   resolution = "merge"
	resolveReplace resolution = "replace"
)

var resolutionChoices = []struct {
	value resolution
	label string
}{
	{resolveCancel, "Cancel the download."},
	{resolveMerge, "Merge with the existing templates."},
	{resolveReplace, "Replace the existing templates."},
}

func newPullCmd() *cobra.Command {
	var resolve string

	cmd := &cobra.Command{
		Use:   "pull [url]",
		Short: "Download profile templates",
		Long: `Download a profile templates document and save it locally.
If templates already exist, they can be merged with the download (downloaded
templates win), replaced by it, or kept by canceling.

Examples:
  aws-login pull https://example.com/templates.json
  aws-login pull --resolve merge`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := config.TemplatesURL
			if len(args) == 1 {
				url = args[0]
			}
			if strings.TrimSpace(url) == "" {
				return core.Errorf(1, "A templates URL is required.")
			}

			choice := resolution(resolve)
			switch choice {
			case "", resolveCancel, resolveMerge, resolveReplace:
			default:
				return core.Errorf(1, "The --resolve option must be one of cancel, merge, or replace.")
			}

			data, err := download(cmd, url)
			if err != nil {
				return err
			}

			remote, err := templates.Parse(bytes.NewReader(data))
			if err != nil {
				return core.WithContext(err, "Could not parse the downloaded templates.")
			}

			local, err := store.Templates()
			if err != nil {
				return err
			}

			if len(local) == 0 {
				return saveTemplates(remote, "Could not save the downloaded templates.")
			}

			if choice == "" {
				choice, err = selectResolution()
				if err != nil {
					return err
				}
			}

			switch choice {
			case resolveMerge:
				return saveTemplates(local.Merge(remote), "Could not update local templates.")
			case resolveReplace:
				return saveTemplates(remote, "Could not save the downloaded templates.")
			default:
				logger.Debug("download canceled")
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&resolve, "resolve", "", "what to do with existing templates: cancel, merge, or replace")

	return cmd
}

func download(cmd *cobra.Command, url string) ([]byte, error) {
	timeout, err := config.Timeout()
	if err != nil {
		return nil, core.WithContext(err, "The templates could not be downloaded.")
	}

	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
	if err != nil {
		return nil, core.WithContext(err, "The templates could not be downloaded.")
	}

	logger.Debug("downloading templates", "url", url, "timeout", timeout)

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, core.WithContext(err, "The templates could not be downloaded.")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, core.Errorf(1, "The server responded with %s.", resp.Status).
			WithContext("The templates could not be downloaded.")
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTemplatesSize))
	if err != nil {
		return nil, core.WithContext(err, "The download response could not be read.")
	}

	return data, nil
}

func selectResolution() (resolution, error) {
	labels := make([]string, 0, len(resolutionChoices))
	for _, choice := range resolutionChoices {
		labels = append(labels, choice.label)
	}

	selected, err := selector.Select("What would you like to do with the existing templates?", labels)
	if err != nil {
		return "", err
	}

	for _, choice := range resolutionChoices {
		if choice.label == selected {
			return choice.value, nil
		}
	}

	return "", core.Errorf(1, "The selection, %s, is not a valid choice.", selected)
}

// saveTemplates backs up the current templates file, writes the new
// collection, and restores the backup if the write fails.
func saveTemplates(collection templates.Templates, failure string) error {
	var backupPath string
	if store.Exists() {
		path, _, err := backupManager.Backup(templatesBackupName, store.Path())
		if err != nil {
			return core.WithContext(err, "Could not back up the existing templates.")
		}
		backupPath = path
		logger.Debug("backed up templates", "path", backupPath)
	}

	if err := store.Save(collection); err != nil {
		if backupPath != "" {
			if restoreErr := backupManager.Restore(backupPath); restoreErr != nil {
				logger.Error("could not restore templates", "backup", backupPath, "error", restoreErr)
			}
		}
		return core.WithContext(err, failure)
	}

	if backupPath != "" {
		if err := backupManager.Clean(templatesBackupName, config.BackupKeep); err != nil {
			logger.Warn("could not remove old template backups", "error", err)
		}
	}

	_, err := fmt.Fprintf(application.ErrOutput(), "Saved %d templates to %s\n", len(collection), store.Path())
	return err
}
