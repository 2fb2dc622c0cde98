package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/google/uuid"

	"influencer-battle/models"
	"influencer-battle/utils"
)

// ObjectStorage stores uploaded media and returns a public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, key, contentType string, data []byte) (string, error)
}

// AutomationSink accepts webhook query parameters for background delivery.
type AutomationSink interface {
	Enqueue(params url.Values) bool
}

// AutomationPayload is the caller-supplied part of a webhook notification.
type AutomationPayload map[string]any

// Backend wraps the live data store, media storage and the automation
// webhook behind the few calls the rest of the app needs.
type Backend struct {
	Live           LiveStore
	Storage        ObjectStorage
	Automation     AutomationSink
	ProfileTimeout time.Duration
	Source         string
	Now            func() time.Time
}

func NewBackend(live LiveStore, storage ObjectStorage, automation AutomationSink, profileTimeout time.Duration, source string) *Backend {
	if profileTimeout <= 0 {
		profileTimeout = 6 * time.Second
	}
	return &Backend{
		Live:           live,
		Storage:        storage,
		Automation:     automation,
		ProfileTimeout: profileTimeout,
		Source:         source,
		Now:            time.Now,
	}
}

// FetchProfile resolves the app-level user for an auth identity. It returns
// nil on any failure, including the lookup running past ProfileTimeout.
func (b *Backend) FetchProfile(ctx context.Context, userID string) *models.UserSession {
	ctx, cancel := context.WithTimeout(ctx, b.ProfileTimeout)
	defer cancel()

	profile, err := b.Live.GetProfile(ctx, userID)
	if err != nil || profile == nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			log.Printf("[Profile] ⏱️ lookup for %s timed out, using fallback", userID)
		case err != nil && !errors.Is(err, ErrBackendUnavailable):
			log.Printf("[Profile] ⚠️ lookup for %s failed (using fallback): %v", userID, err)
		}
		return nil
	}

	count, err := b.Live.CountInfluencers(ctx, userID)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		log.Printf("[Profile] ⏱️ influencer check for %s timed out, using fallback", userID)
		return nil
	}

	role := models.RoleInfluencer
	if profile.Role == models.RoleAdmin {
		role = models.RoleAdmin
	}
	return &models.UserSession{
		ID:         profile.ID,
		Email:      profile.Email,
		Role:       role,
		HasProfile: err == nil && count > 0,
		Origin:     models.OriginLive,
	}
}

// UploadMedia stores file under a generated name and returns its URL. When
// storage is missing or rejects the upload, the file is inlined as a data
// URL instead. It only fails when the file itself cannot be read.
func (b *Backend) UploadMedia(ctx context.Context, file utils.File, bucket string) (string, error) {
	data, err := file.ReadAll()
	if err != nil {
		return "", err
	}
	if b.Storage == nil {
		return utils.EncodeDataURL(file.ContentType, data), nil
	}

	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	key := fmt.Sprintf("%s_%d.%s", token, b.Now().UnixMilli(), file.Extension())

	publicURL, err := b.Storage.Upload(ctx, bucket, key, file.ContentType, data)
	if err != nil {
		if isExpectedStorageError(err) {
			log.Printf("[Upload] ℹ️ bucket %q not configured, using inline fallback", bucket)
		} else {
			log.Printf("[Upload] ⚠️ upload to %q failed, using inline fallback: %v", bucket, err)
		}
		return utils.EncodeDataURL(file.ContentType, data), nil
	}
	return publicURL, nil
}

func isExpectedStorageError(err error) bool {
	msg := err.Error()
	if strings.Contains(msg, "Bucket not found") ||
		strings.Contains(msg, "NoSuchBucket") ||
		strings.Contains(msg, "row-level security") {
		return true
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}

// NotifyAutomation hands the payload to the webhook dispatcher. It never
// blocks on delivery and never fails the caller.
func (b *Backend) NotifyAutomation(payload AutomationPayload) {
	if b.Automation == nil {
		return
	}
	params := BuildAutomationParams(payload, b.Source, b.Now())
	if !b.Automation.Enqueue(params) {
		log.Printf("[Automation] ⚠️ dropped notification for %s %s", params.Get("target_table"), params.Get("record_id"))
		return
	}
	log.Printf("[Automation] triggering for [%s] ID: %s", params.Get("target_table"), params.Get("record_id"))
}

// BuildAutomationParams flattens a payload into webhook query parameters and
// adds the routing fields the automation keys on.
func BuildAutomationParams(payload AutomationPayload, source string, now time.Time) url.Values {
	handle := firstString(payload, "handle_tiktok", "influencer_handle")
	igHandle := firstString(payload, "handle_instagram", "influencer_instagram")

	tiktokURL := firstString(payload, "tiktok_url", "video_url")
	if tiktokURL == "" && handle != "" {
		h := strings.TrimSpace(handle)
		switch {
		case strings.HasPrefix(h, "http"):
			tiktokURL = h
		case strings.HasPrefix(h, "@"):
			tiktokURL = "https://www.tiktok.com/" + h
		default:
			tiktokURL = "https://www.tiktok.com/@" + h
		}
	}

	instagramURL := firstString(payload, "instagram_url")
	if instagramURL == "" && igHandle != "" {
		h := strings.TrimSpace(igHandle)
		if strings.HasPrefix(h, "http") {
			instagramURL = h
		} else {
			instagramURL = "https://www.instagram.com/" + strings.Replace(h, "@", "", 1)
		}
	}

	targetTable, recordID := "influencers", stringValue(payload["id"])
	if stringValue(payload["type"]) == "contest_entry" {
		targetTable, recordID = "contest_entries", stringValue(payload["entry_id"])
	}

	params := url.Values{}
	for k, v := range payload {
		if s, ok := paramValue(v); ok {
			params.Set(k, s)
		}
	}
	params.Set("target_table", targetTable)
	setOrDelete(params, "record_id", recordID)
	setOrDelete(params, "tiktok_url", tiktokURL)
	setOrDelete(params, "instagram_url", instagramURL)
	params.Set("timestamp", now.UTC().Format(time.RFC3339Nano))
	params.Set("source", source)
	return params
}

func setOrDelete(params url.Values, key, value string) {
	if value == "" {
		params.Del(key)
		return
	}
	params.Set(key, value)
}

func firstString(payload AutomationPayload, keys ...string) string {
	for _, k := range keys {
		if s := stringValue(payload[k]); s != "" {
			return s
		}
	}
	return ""
}

func stringValue(v any) string {
	s, _ := paramValue(v)
	return s
}

// paramValue renders scalars with fmt and composite values as JSON.
func paramValue(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case fmt.Stringer:
		return t.String(), true
	case bool, int, int32, int64, uint, uint64, float32, float64:
		return fmt.Sprint(t), true
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t), true
		}
		return string(b), true
	}
}
