package storage

import (
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Document store backed by Cloudinary raw uploads. Configuration via
// CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY, CLOUDINARY_API_SECRET and
// optionally CLOUDINARY_FOLDER.

func InitializeDocumentStore() {
	if os.Getenv("CLOUDINARY_CLOUD_NAME") == "" {
		log.Println("CLOUDINARY_CLOUD_NAME not set, document uploads will fail until configured")
	}
}

// documentPublicID keys a stored file by property and document type plus a
// timestamp, so re-uploads of the same type never collide.
func documentPublicID(propertyID uint, documentType string) string {
	return fmt.Sprintf("property-%d/%s-%d", propertyID, documentType, time.Now().Unix())
}

// UploadDocument sends raw file bytes to the document store and returns the
// stored URL, or an empty string on failure.
func UploadDocument(content []byte, propertyID uint, documentType string) string {
	cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
	apiKey := os.Getenv("CLOUDINARY_API_KEY")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")
	folder := os.Getenv("CLOUDINARY_FOLDER")

	if cloudName == "" || apiKey == "" || apiSecret == "" {
		log.Println("document store: missing Cloudinary env vars")
		return ""
	}

	publicID := documentPublicID(propertyID, documentType)
	if folder != "" {
		publicID = folder + "/" + publicID
	}

	endpoint := "https://api.cloudinary.com/v1_1/" + cloudName + "/raw/upload"

	form := url.Values{}
	form.Add("file", "data:application/octet-stream;base64,"+base64.StdEncoding.EncodeToString(content))
	form.Add("api_key", apiKey)
	form.Add("public_id", publicID)

	// Cloudinary signed upload: SHA1 over the sorted params plus the secret
	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	form.Add("timestamp", timestamp)
	signatureString := fmt.Sprintf("public_id=%s&timestamp=%s%s", publicID, timestamp, apiSecret)
	form.Add("signature", fmt.Sprintf("%x", sha1.Sum([]byte(signatureString))))

	req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		log.Printf("document store: failed to create request: %v", err)
		return ""
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Printf("document store: upload request failed: %v", err)
		return ""
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		log.Printf("document store: failed to read response: %v", err)
		return ""
	}
	if res.StatusCode != 200 {
		log.Printf("document store: upload failed with status %d: %s", res.StatusCode, string(body))
		return ""
	}

	var cloudRes struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &cloudRes); err != nil {
		log.Printf("document store: failed to parse response: %v", err)
		return ""
	}
	if cloudRes.Error.Message != "" {
		log.Printf("document store: %s", cloudRes.Error.Message)
		return ""
	}

	if cloudRes.SecureURL != "" {
		return cloudRes.SecureURL
	}
	return cloudRes.URL
}

// DeleteDocument removes a stored file by its URL. Returns false on any
// failure; callers treat deletion as best effort.
func DeleteDocument(storageURL string) bool {
	if !strings.Contains(storageURL, "res.cloudinary.com") {
		return false
	}

	parts := strings.Split(storageURL, "/")
	if len(parts) < 2 {
		return false
	}
	lastPart := parts[len(parts)-1]
	publicID := strings.Split(lastPart, ".")[0]

	cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
	apiKey := os.Getenv("CLOUDINARY_API_KEY")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")
	folder := os.Getenv("CLOUDINARY_FOLDER")
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return false
	}
	if folder != "" {
		publicID = folder + "/" + publicID
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	signatureString := fmt.Sprintf("public_id=%s&timestamp=%s%s", publicID, timestamp, apiSecret)

	form := url.Values{}
	form.Add("public_id", publicID)
	form.Add("api_key", apiKey)
	form.Add("timestamp", timestamp)
	form.Add("signature", fmt.Sprintf("%x", sha1.Sum([]byte(signatureString))))

	endpoint := "https://api.cloudinary.com/v1_1/" + cloudName + "/raw/destroy"
	req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil || res.StatusCode != 200 {
		return false
	}

	var deleteRes struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal(body, &deleteRes); err != nil {
		return false
	}
	return deleteRes.Result == "ok"
}
