package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/kinoreel/kinoapi/internal/cache"
)

// cachedResponse is the serialized snapshot of a response stored with the
// global TTL.
type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type bodyCaptureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyCaptureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// cacheResponses serves whole responses from the store, keyed on the
// request's method, path and sorted query parameters. Only successful
// responses are stored; within the TTL identical requests get the stored
// bytes without touching the handlers.
func cacheResponses(store cache.Store, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := cache.RequestKey(c.Request.Method, c.Request.URL.Path, c.Request.URL.Query())

		data, err := store.Get(c.Request.Context(), key)
		if err == nil {
			var cached cachedResponse
			if err := json.Unmarshal(data, &cached); err == nil {
				cache.Hits.WithLabelValues("response").Inc()
				c.Data(cached.Status, cached.ContentType, cached.Body)
				c.Abort()
				return
			}
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			cache.Errors.WithLabelValues("get").Inc()
			log.WithFields(log.Fields{"error": err, "path": c.Request.URL.Path}).Warnln("Response cache get failed")
		}
		cache.Misses.WithLabelValues("response").Inc()

		writer := &bodyCaptureWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Next()

		if writer.Status() != http.StatusOK {
			return
		}
		payload, err := json.Marshal(cachedResponse{
			Status:      writer.Status(),
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body.Bytes(),
		})
		if err != nil {
			return
		}
		if err := store.Set(c.Request.Context(), key, payload, ttl); err != nil {
			cache.Errors.WithLabelValues("set").Inc()
			log.WithFields(log.Fields{"error": err, "path": c.Request.URL.Path}).Warnln("Response cache set failed")
		}
	}
}
