package services

import (
	"fmt"

	"github.com/presencematic/whatsapp-orders/internal/models"
)

// Replies sent back to the customer, one per transition
const (
	ReplyGreeting = "👋 Hi! Welcome to *PresenceMatic Café*.\nWould you like to see our menu? (yes/no)"

	ReplyMenu = "🍽️ *Menu*\n" +
		"1️⃣ Cold Coffee ₹120\n" +
		"2️⃣ Paneer Roll ₹110\n" +
		"3️⃣ Veg Sandwich ₹90\n\n" +
		"Reply with item numbers (e.g. 1,3)."

	ReplyAskAddress = "Great choice 😋! Please share your delivery address 🏠"

	ReplyConfirmation = "✅ Thank you! Your order has been received.\nOur team will call you shortly for confirmation ☎️."

	ReplyFallback = "Type *Hi* to start your order again 😊"

	ReplyEmptyMessage = "Sorry, I didn't receive any message. Type *Hi* to start your order."
)

// staffOrderSavedMessage is the alert staff receive for every saved order
func staffOrderSavedMessage(r models.OrderRecord) string {
	return fmt.Sprintf("🆕 *New order*\n\n📱 %s\n🍽️ %s\n🏠 %s\n🕒 %s",
		r.Sender, r.Items, r.Address, r.Timestamp.Local().Format(models.TimestampLayout))
}

// staffOrderNotSavedMessage asks staff to record an order by hand after a failed write
func staffOrderNotSavedMessage(r models.OrderRecord, cause error) string {
	return fmt.Sprintf("⚠️ *Order NOT saved*\n\n📱 %s\n🍽️ %s\n🏠 %s\n🕒 %s\n\nReason: %v\nPlease add it to the sheet manually.",
		r.Sender, r.Items, r.Address, r.Timestamp.Local().Format(models.TimestampLayout), cause)
}
