package ingestion

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DriveSource downloads documents from a Google Drive folder so they can be
// ingested like local files. Authentication uses a service-account key file;
// the account needs read access to the folder.
type DriveSource struct {
	svc *drive.Service
	log *zap.Logger
}

// NewDriveSource builds a DriveSource from a service-account credentials file.
func NewDriveSource(ctx context.Context, credentialsFile string, log *zap.Logger) (*DriveSource, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading drive credentials: %w", err)
	}
	cfg, err := google.JWTConfigFromJSON(b, drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parsing drive credentials: %w", err)
	}
	svc, err := drive.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("creating drive service: %w", err)
	}
	return &DriveSource{svc: svc, log: log}, nil
}

// DownloadFolder fetches every ingestible file in the given Drive folder into
// destDir and returns the local paths.
func (d *DriveSource) DownloadFolder(ctx context.Context, folderID, destDir string) ([]string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating download dir: %w", err)
	}

	query := fmt.Sprintf("'%s' in parents and trashed = false", folderID)
	var paths []string
	err := d.svc.Files.List().
		Q(query).
		Fields("nextPageToken, files(id, name, mimeType)").
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				if !allowedExt[strings.ToLower(filepath.Ext(f.Name))] {
					d.log.Debug("skipping drive file", zap.String("name", f.Name))
					continue
				}
				local, err := d.downloadFile(f, destDir)
				if err != nil {
					d.log.Warn("drive download failed",
						zap.String("name", f.Name), zap.Error(err))
					continue
				}
				paths = append(paths, local)
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("listing drive folder: %w", err)
	}

	d.log.Info("drive folder downloaded",
		zap.String("folder", folderID), zap.Int("files", len(paths)))
	return paths, nil
}

func (d *DriveSource) downloadFile(f *drive.File, destDir string) (string, error) {
	resp, err := d.svc.Files.Get(f.Id).Download()
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", f.Name, err)
	}
	defer resp.Body.Close()

	local := filepath.Join(destDir, filepath.Base(f.Name))
	out, err := os.Create(local)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(local)
		return "", fmt.Errorf("writing %s: %w", local, err)
	}
	return local, nil
}
