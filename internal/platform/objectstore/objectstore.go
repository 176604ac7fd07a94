package objectstore

import (
	"context"
	"errors"
	"strings"
)

// ErrObjectNotFound is returned by Read when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Gateway is the blob store used for rendered scorecards.
type Gateway interface {
	Exists(ctx context.Context, key string) (bool, error)
	Write(ctx context.Context, key string, content []byte, contentType, cacheControl string) error
	Read(ctx context.Context, key string) ([]byte, error)
	PublicURL(key string) string
}

type Category string

const CategoryPatentImages Category = "patent-images"

// Key builds "{category}/{id}.{ext}".
func Key(category Category, id, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	return string(category) + "/" + id + "." + ext
}

func cleanKey(key string) string {
	return strings.TrimLeft(strings.TrimSpace(key), "/")
}
