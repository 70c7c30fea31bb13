package usecase

import (
	"net/url"
	"path"
	"strconv"
	"strings"
)

const defaultImageExt = ".jpg"

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// ImageFilename names the local file for a record's image:
// entry-<id>-<host><ext>. host is the page host without "www."; the extension
// comes from the image URL path when recognized and defaults to .jpg.
func ImageFilename(id int64, host, imageURL string) string {
	host = strings.TrimPrefix(host, "www.")
	host = strings.ReplaceAll(host, ":", "_")
	host = strings.ReplaceAll(host, "/", "_")
	return "entry-" + strconv.FormatInt(id, 10) + "-" + host + imageExt(imageURL)
}

func imageExt(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return defaultImageExt
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if allowedImageExts[ext] {
		return ext
	}
	return defaultImageExt
}
