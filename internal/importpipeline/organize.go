package importpipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

const maxSafeTitleLength = 120

// SafeTitle strips filesystem-invalid characters from title, trims
// whitespace, and caps its length (spec §4.6 step 6 safe_title,
// grounded on original_source's sanitize_filename).
func SafeTitle(title string) string {
	s := invalidFilenameChars.ReplaceAllString(title, "")
	s = strings.TrimSpace(s)
	if len(s) > maxSafeTitleLength {
		s = strings.TrimSpace(s[:maxSafeTitleLength])
	}
	return s
}

// PathInputs are the fields substitutable into a configured
// organization_pattern template (spec §4.6 step 6).
type PathInputs struct {
	Category string
	Title    string
	Language string
	Year     int
	Month    int
	Day      int
	Issue    int
	Volume   int
}

// BuildOrganizePath computes the canonical on-disk path for an imported
// file under organizeBase. When pattern is empty, the default structure
// from spec §4.6 step 6 is used; otherwise pattern's {category} {title}
// {language} {year} {month} {day} {issue} {volume} placeholders are
// substituted.
func BuildOrganizePath(organizeBase, categoryPrefix, pattern string, in PathInputs) string {
	safeTitle := SafeTitle(in.Title)
	monAbbr := time.Month(in.Month).String()
	if in.Month < 1 || in.Month > 12 {
		monAbbr = ""
	} else {
		monAbbr = monAbbr[:3]
	}

	if pattern != "" {
		rel := substitutePattern(pattern, categoryPrefix, safeTitle, in, monAbbr)
		return filepath.Join(organizeBase, rel+".pdf")
	}

	var nameParts []string
	nameParts = append(nameParts, safeTitle)
	if in.Volume > 0 {
		nameParts = append(nameParts, "Vol"+strconv.Itoa(in.Volume))
	}
	if in.Issue > 0 {
		nameParts = append(nameParts, "No"+strconv.Itoa(in.Issue))
	}
	nameParts = append(nameParts, fmt.Sprintf("%s%d", monAbbr, in.Year))
	filename := safeTitle + " - " + strings.Join(nameParts[1:], " - ")

	dirParts := []string{organizeBase, categoryPrefix + in.Category, safeTitle}
	if in.Volume > 0 {
		dirParts = append(dirParts, "Vol"+strconv.Itoa(in.Volume))
	}
	dirParts = append(dirParts, strconv.Itoa(in.Year))
	return filepath.Join(append(dirParts, filename+".pdf")...)
}

func substitutePattern(pattern, categoryPrefix, safeTitle string, in PathInputs, monAbbr string) string {
	replacer := strings.NewReplacer(
		"{category}", categoryPrefix+in.Category,
		"{title}", safeTitle,
		"{language}", in.Language,
		"{year}", strconv.Itoa(in.Year),
		"{month}", fmt.Sprintf("%02d", in.Month),
		"{day}", fmt.Sprintf("%02d", in.Day),
		"{issue}", strconv.Itoa(in.Issue),
		"{volume}", strconv.Itoa(in.Volume),
	)
	_ = monAbbr
	return replacer.Replace(pattern)
}

// ResolveCollision appends " (timestamp)" before the extension if path
// already exists (spec §4.6 step 6 collision handling).
func ResolveCollision(path string, now time.Time) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s (%d)%s", base, now.Unix(), ext)
}

// MoveFile renames src to dst, falling back to copy+delete across
// filesystem/volume boundaries (spec §4.6 step 6).
func MoveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create target dir: %w", err)
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	return os.Remove(src)
}
