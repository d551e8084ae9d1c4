// Package download fetches the WebDriver binaries a test run needs into the
// driver directory.
package download

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
)

// File describes how to download a file from the Web.
type File struct {
	URL string
	// Name is the name of the downloaded file in the target directory.
	Name string
	// Hash is the expected hex digest of the download, if known.
	Hash     string
	HashType string // default is sha256
	// Rename moves Rename[0] to Rename[1] after unpacking, both relative to
	// the target directory.
	Rename []string
	// Binary is the executable the download provides, relative to the target
	// directory.
	Binary string
}

// Path returns where f is stored in dir.
func (f File) Path(dir string) string {
	return filepath.Join(dir, f.Name)
}

var httpClient = http.DefaultClient

// Download fetches f into dir unless a copy with the expected hash is
// already there, then unpacks it.
func Download(ctx context.Context, f File, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if f.Hash != "" && sameHash(f, dir) {
		glog.Infof("Skipping file %q which has already been downloaded.", f.Name)
	} else {
		glog.Infof("Downloading %q from %q", f.Name, f.URL)
		if err := fetch(ctx, f, dir); err != nil {
			return err
		}
	}

	if err := unpack(ctx, f, dir); err != nil {
		return err
	}

	if len(f.Rename) == 2 {
		from := filepath.Join(dir, f.Rename[0])
		to := filepath.Join(dir, f.Rename[1])
		glog.Infof("Renaming %q to %q", from, to)
		os.RemoveAll(to) // Ignore error.
		if err := os.Rename(from, to); err != nil {
			return fmt.Errorf("renaming %q to %q: %v", from, to, err)
		}
	}
	if f.Binary != "" {
		if err := os.Chmod(filepath.Join(dir, f.Binary), 0755); err != nil {
			return fmt.Errorf("%s: %v", f.Name, err)
		}
	}
	return nil
}

// All downloads files into dir concurrently.
func All(ctx context.Context, files []File, dir string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, f := range files {
		f := f
		g.Go(func() error {
			if err := Download(ctx, f, dir); err != nil {
				return fmt.Errorf("error handling %s: %v", f.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func newHash(hashType string) hash.Hash {
	switch strings.ToLower(hashType) {
	case "md5":
		return md5.New()
	case "sha1":
		return sha1.New()
	default:
		return sha256.New()
	}
}

func fetch(ctx context.Context, f File, dir string) (err error) {
	out, err := os.Create(f.Path(dir))
	if err != nil {
		return fmt.Errorf("error creating %q: %v", f.Path(dir), err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("error closing %q: %v", f.Path(dir), closeErr)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: error downloading %q: %v", f.Name, f.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: error downloading %q: %s", f.Name, f.URL, resp.Status)
	}

	if f.Hash == "" {
		if _, err := io.Copy(out, resp.Body); err != nil {
			return fmt.Errorf("%s: error downloading %q: %v", f.Name, f.URL, err)
		}
		return nil
	}
	h := newHash(f.HashType)
	if _, err := io.Copy(io.MultiWriter(out, h), resp.Body); err != nil {
		return fmt.Errorf("%s: error downloading %q: %v", f.Name, f.URL, err)
	}
	if got := hex.EncodeToString(h.Sum(nil)); got != f.Hash {
		return fmt.Errorf("%s: got %s hash %q, want %q", f.Name, hashName(f.HashType), got, f.Hash)
	}
	return nil
}

func hashName(hashType string) string {
	if hashType == "" {
		return "sha256"
	}
	return hashType
}

func sameHash(f File, dir string) bool {
	in, err := os.Open(f.Path(dir))
	if err != nil {
		return false
	}
	defer in.Close()

	h := newHash(f.HashType)
	if _, err := io.Copy(h, in); err != nil {
		return false
	}
	sum := hex.EncodeToString(h.Sum(nil))
	if sum != f.Hash {
		glog.Warningf("File %q: got hash %q, expect hash %q", f.Name, sum, f.Hash)
		return false
	}
	return true
}

// unpackCommand returns the command that extracts archive into dir, or nil
// when archive is not an archive.
func unpackCommand(archive, dir string) []string {
	switch {
	case path.Ext(archive) == ".zip":
		return []string{"unzip", "-o", "-d", dir, archive}
	case strings.HasSuffix(archive, ".tar.gz"), path.Ext(archive) == ".tgz":
		return []string{"tar", "-xzf", archive, "-C", dir}
	case strings.HasSuffix(archive, ".tar.bz2"):
		return []string{"tar", "-xjf", archive, "-C", dir}
	}
	return nil
}

func unpack(ctx context.Context, f File, dir string) error {
	args := unpackCommand(f.Path(dir), dir)
	if args == nil {
		return nil
	}
	glog.Infof("Unpacking %q", f.Path(dir))
	if out, err := exec.CommandContext(ctx, args[0], args[1:]...).CombinedOutput(); err != nil {
		return fmt.Errorf("error unpacking %q: %v: %s", f.Name, err, out)
	}
	return nil
}
