package download

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"path"
	"regexp"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/blang/semver"
	"github.com/golang/glog"
	"github.com/google/go-github/v27/github"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// ChromeBucket is the Chrome for Testing bucket holding the chromedriver
// builds, one directory per Chrome version.
const ChromeBucket = "chrome-for-testing-public"

// Owner and repository of the geckodriver releases.
const (
	geckoOwner = "mozilla"
	geckoRepo  = "geckodriver"
)

// maxChromeCandidates bounds how many versions are tried when the newest
// ones have no chromedriver for the platform.
const maxChromeCandidates = 5

// bucket is the part of a storage bucket the chromedriver lookup reads.
type bucket interface {
	// versions lists the top level directories.
	versions(ctx context.Context) ([]string, error)
	attrs(ctx context.Context, object string) (*storage.ObjectAttrs, error)
}

type gcsBucket struct {
	*storage.BucketHandle
}

func (b gcsBucket) versions(ctx context.Context) ([]string, error) {
	var dirs []string
	it := b.Objects(ctx, &storage.Query{Delimiter: "/"})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			return dirs, nil
		}
		if err != nil {
			return nil, err
		}
		if attrs.Prefix != "" {
			dirs = append(dirs, strings.TrimSuffix(attrs.Prefix, "/"))
		}
	}
}

func (b gcsBucket) attrs(ctx context.Context, object string) (*storage.ObjectAttrs, error) {
	return b.Object(object).Attrs(ctx)
}

// chromeVersion is a Chrome version MAJOR.MINOR.BUILD.PATCH mapped onto
// semver as MAJOR.BUILD.PATCH. MINOR is always 0.
type chromeVersion struct {
	raw string
	v   semver.Version
}

func parseChromeVersion(s string) (chromeVersion, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return chromeVersion{}, fmt.Errorf("%q is not a Chrome version", s)
	}
	var n [4]uint64
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return chromeVersion{}, fmt.Errorf("%q is not a Chrome version", s)
		}
		n[i] = v
	}
	if n[1] != 0 {
		return chromeVersion{}, fmt.Errorf("%q has a non-zero minor version", s)
	}
	return chromeVersion{raw: s, v: semver.Version{Major: n[0], Minor: n[2], Patch: n[3]}}, nil
}

// chromeCandidates returns the versions matching pin, newest first. pin is
// empty for any version, a major version such as "120", or a full version.
func chromeCandidates(dirs []string, pin string) ([]chromeVersion, error) {
	match := func(chromeVersion) bool { return true }
	switch {
	case pin == "":
	case strings.Count(pin, ".") == 3:
		match = func(v chromeVersion) bool { return v.raw == pin }
	default:
		major, err := strconv.ParseUint(pin, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("chrome version pin %q must be a major or a full version", pin)
		}
		match = func(v chromeVersion) bool { return v.v.Major == major }
	}

	var vs []chromeVersion
	for _, d := range dirs {
		v, err := parseChromeVersion(d)
		if err != nil {
			continue
		}
		if match(v) {
			vs = append(vs, v)
		}
	}
	if len(vs) == 0 {
		return nil, fmt.Errorf("no Chrome version matches %q", pin)
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i].v.GT(vs[j].v) })
	return vs, nil
}

// chromePlatform returns the Chrome for Testing platform name.
func chromePlatform(goos, goarch string) (string, error) {
	switch goos + "/" + goarch {
	case "linux/amd64":
		return "linux64", nil
	case "darwin/amd64":
		return "mac-x64", nil
	case "darwin/arm64":
		return "mac-arm64", nil
	case "windows/amd64":
		return "win64", nil
	case "windows/386":
		return "win32", nil
	}
	return "", fmt.Errorf("no chromedriver build for %s/%s", goos, goarch)
}

func exe(goos, name string) string {
	if goos == "windows" {
		return name + ".exe"
	}
	return name
}

// ChromeDriver returns the chromedriver download for this platform. pin
// selects the Chrome version: empty for the newest, a major version or a
// full version.
func ChromeDriver(ctx context.Context, pin string) (File, error) {
	client, err := storage.NewClient(ctx, option.WithHTTPClient(http.DefaultClient))
	if err != nil {
		return File{}, fmt.Errorf("cannot create a storage client for downloading chromedriver: %v", err)
	}
	defer client.Close()
	return chromeDriver(ctx, gcsBucket{client.Bucket(ChromeBucket)}, pin, runtime.GOOS, runtime.GOARCH)
}

func chromeDriver(ctx context.Context, bkt bucket, pin, goos, goarch string) (File, error) {
	platform, err := chromePlatform(goos, goarch)
	if err != nil {
		return File{}, err
	}
	dirs, err := bkt.versions(ctx)
	if err != nil {
		return File{}, fmt.Errorf("listing gs://%s: %v", ChromeBucket, err)
	}
	vs, err := chromeCandidates(dirs, pin)
	if err != nil {
		return File{}, err
	}
	if len(vs) > maxChromeCandidates {
		vs = vs[:maxChromeCandidates]
	}

	archive := "chromedriver-" + platform
	for _, v := range vs {
		object := path.Join(v.raw, platform, archive+".zip")
		attrs, err := bkt.attrs(ctx, object)
		if errors.Is(err, storage.ErrObjectNotExist) {
			glog.Warningf("Chrome %s has no chromedriver for %s", v.raw, platform)
			continue
		}
		if err != nil {
			return File{}, fmt.Errorf("cannot get gs://%s/%s attrs: %v", ChromeBucket, object, err)
		}
		glog.Infof("Using chromedriver %s", v.raw)
		f := File{
			URL:    attrs.MediaLink,
			Name:   archive + ".zip",
			Rename: []string{path.Join(archive, exe(goos, "chromedriver")), exe(goos, "chromedriver")},
			Binary: exe(goos, "chromedriver"),
		}
		if len(attrs.MD5) > 0 {
			f.Hash = hex.EncodeToString(attrs.MD5)
			f.HashType = "md5"
		}
		return f, nil
	}
	return File{}, fmt.Errorf("no chromedriver for %s among Chrome versions matching %q", platform, pin)
}

// geckoAsset returns the suffix of the geckodriver release asset built for
// the platform.
func geckoAsset(goos, goarch string) (string, error) {
	switch goos + "/" + goarch {
	case "linux/amd64":
		return "linux64.tar.gz", nil
	case "linux/386":
		return "linux32.tar.gz", nil
	case "linux/arm64":
		return "linux-aarch64.tar.gz", nil
	case "darwin/amd64":
		return "macos.tar.gz", nil
	case "darwin/arm64":
		return "macos-aarch64.tar.gz", nil
	case "windows/amd64":
		return "win64.zip", nil
	case "windows/386":
		return "win32.zip", nil
	}
	return "", fmt.Errorf("no geckodriver build for %s/%s", goos, goarch)
}

// GeckoDriver returns the geckodriver download for this platform. pin is
// empty for the latest release, a version such as "0.34.0" or a range such
// as ">=0.33.0 <0.35.0".
func GeckoDriver(ctx context.Context, pin string) (File, error) {
	return geckoDriver(ctx, github.NewClient(nil), pin, runtime.GOOS, runtime.GOARCH)
}

func geckoDriver(ctx context.Context, client *github.Client, pin, goos, goarch string) (File, error) {
	suffix, err := geckoAsset(goos, goarch)
	if err != nil {
		return File{}, err
	}
	var rel *github.RepositoryRelease
	if pin == "" {
		rel, _, err = client.Repositories.GetLatestRelease(ctx, geckoOwner, geckoRepo)
		if err != nil {
			return File{}, err
		}
	} else {
		if rel, err = pinnedRelease(ctx, client, pin); err != nil {
			return File{}, err
		}
	}
	glog.Infof("Using geckodriver %s", rel.GetTagName())

	assetRE := regexp.MustCompile(`^geckodriver-v[0-9.]+-` + regexp.QuoteMeta(suffix) + `$`)
	for _, a := range rel.Assets {
		if !assetRE.MatchString(a.GetName()) {
			continue
		}
		u := a.GetBrowserDownloadURL()
		if u == "" {
			return File{}, fmt.Errorf("%s does not have a download URL", a.GetName())
		}
		return File{
			URL:    u,
			Name:   a.GetName(),
			Binary: exe(goos, "geckodriver"),
		}, nil
	}
	return File{}, fmt.Errorf("release %s has no %s asset at https://github.com/%s/%s/releases", rel.GetTagName(), suffix, geckoOwner, geckoRepo)
}

// pinnedRelease returns the newest stable release whose version matches pin.
func pinnedRelease(ctx context.Context, client *github.Client, pin string) (*github.RepositoryRelease, error) {
	match, err := versionMatcher(pin)
	if err != nil {
		return nil, err
	}
	var (
		best    *github.RepositoryRelease
		bestVer semver.Version
	)
	opt := &github.ListOptions{PerPage: 100}
	for {
		rels, resp, err := client.Repositories.ListReleases(ctx, geckoOwner, geckoRepo, opt)
		if err != nil {
			return nil, err
		}
		for _, r := range rels {
			if r.GetDraft() || r.GetPrerelease() {
				continue
			}
			v, err := semver.ParseTolerant(r.GetTagName())
			if err != nil || !match(v) {
				continue
			}
			if best == nil || v.GT(bestVer) {
				best, bestVer = r, v
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	if best == nil {
		return nil, fmt.Errorf("no geckodriver release matches %q", pin)
	}
	return best, nil
}

// versionMatcher accepts an exact version (with or without a leading v) or
// a semver range.
func versionMatcher(pin string) (func(semver.Version) bool, error) {
	if v, err := semver.ParseTolerant(pin); err == nil {
		return v.Equals, nil
	}
	r, err := semver.ParseRange(pin)
	if err != nil {
		return nil, fmt.Errorf("geckodriver version pin %q is neither a version nor a range: %v", pin, err)
	}
	return r, nil
}

// Pins selects the driver versions. Empty fields select the newest.
type Pins struct {
	Chrome string
	Gecko  string
}

var resolvers = map[string]func(ctx context.Context, pin string) (File, error){
	"chrome":  ChromeDriver,
	"firefox": GeckoDriver,
}

// Drivers returns the driver downloads of browsers, in order.
func Drivers(ctx context.Context, browsers []string, pins Pins) ([]File, error) {
	var files []File
	for _, b := range browsers {
		resolve, ok := resolvers[b]
		if !ok {
			return nil, fmt.Errorf("no driver for browser %q", b)
		}
		pin := pins.Gecko
		if b == "chrome" {
			pin = pins.Chrome
		}
		f, err := resolve(ctx, pin)
		if err != nil {
			return nil, fmt.Errorf("%s driver: %v", b, err)
		}
		files = append(files, f)
	}
	return files, nil
}
