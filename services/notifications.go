package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"conveyancing-server/conveyancing"
	"conveyancing-server/models"
	"conveyancing-server/storage"
)

// NotificationService creates in-app notification rows and, where the user
// has push tokens registered, mirrors them to the Expo push API.
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// Notify writes one in-app notification and fans out a best-effort push.
func (ns *NotificationService) Notify(userID uint, propertyID *uint, message, notifType string) {
	notif := models.Notification{
		UserID:     userID,
		PropertyID: propertyID,
		Message:    message,
		Type:       notifType,
	}
	if err := storage.DB.Create(&notif).Error; err != nil {
		log.Printf("notifications: failed to store notification for user %d: %v", userID, err)
		return
	}
	go ns.push(userID, message)
}

// NotifyParties sends the same notification to every assigned party on the
// property except the acting user.
func (ns *NotificationService) NotifyParties(prop models.Property, actorID uint, message, notifType string) {
	propertyID := prop.ID
	for _, id := range []*uint{prop.BuyerID, prop.SellerID, prop.BuyerSolicitorID, prop.SellerSolicitorID, prop.EstateAgentID} {
		if id != nil && *id != actorID {
			ns.Notify(*id, &propertyID, message, notifType)
		}
	}
}

// StageCompleted notifies the other parties that a stage has been completed.
func (ns *NotificationService) StageCompleted(prop models.Property, stage models.PropertyStage, actor models.User) {
	message := fmt.Sprintf("Stage '%s' has been completed by %s %s.", stage.Stage, actor.FirstName, actor.LastName)
	ns.NotifyParties(prop, actor.ID, message, "stage_completed")
}

// StageAdvanced notifies the parties that the next stage has started and
// whose turn it is.
func (ns *NotificationService) StageAdvanced(prop models.Property, stage models.PropertyStage, actorID uint) {
	message := fmt.Sprintf("Stage '%s' is now in progress. Responsible: %s.",
		stage.Stage, conveyancing.ResponsibleRoleLabel(stage.ResponsibleRole))
	ns.NotifyParties(prop, actorID, message, "stage_started")
}

// DocumentUploaded notifies the other parties about a new document.
func (ns *NotificationService) DocumentUploaded(prop models.Property, documentLabel string, actor models.User) {
	message := fmt.Sprintf("%s has been uploaded by %s %s.", documentLabel, actor.FirstName, actor.LastName)
	ns.NotifyParties(prop, actor.ID, message, "document_uploaded")
}

// MessageModerated notifies sender and recipient of an approval outcome.
func (ns *NotificationService) MessageModerated(msg models.Message) {
	propertyID := msg.PropertyID
	ns.Notify(msg.RecipientID, &propertyID, "A message has been approved and delivered to you.", "message")
	ns.Notify(msg.SenderID, &propertyID, "Your message was approved and delivered to the recipient.", "delivered")
}

func (ns *NotificationService) getUserPushTokens(userID uint) ([]string, error) {
	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %v", err)
	}
	if user.AllowsNotifications == nil || !*user.AllowsNotifications || user.PushTokens == nil {
		return nil, fmt.Errorf("user has notifications disabled or no tokens")
	}

	var tokens []string
	if err := json.Unmarshal(user.PushTokens, &tokens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal push tokens: %v", err)
	}
	return tokens, nil
}

type expoPushMessage struct {
	To    string `json:"to"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (ns *NotificationService) push(userID uint, body string) {
	tokens, err := ns.getUserPushTokens(userID)
	if err != nil {
		return
	}

	client := &http.Client{Timeout: 10 * time.Second}
	for _, token := range tokens {
		payload, _ := json.Marshal(expoPushMessage{To: token, Title: "Conveyancing update", Body: body})
		req, err := http.NewRequest("POST", "https://exp.host/--/api/v2/push/send", bytes.NewReader(payload))
		if err != nil {
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		res, err := client.Do(req)
		if err != nil {
			log.Printf("notifications: push to user %d failed: %v", userID, err)
			continue
		}
		res.Body.Close()
	}
}
