package realtime

// Topic layout, parameterized by username. The broker is a plain relay:
// whatever is published to a topic reaches that topic's subscribers, so
// user-addressed topics embed the receiving username.

// TopicFriendRequestResponse is the well-known topic friend-request
// decisions are published to. The account service consumes it to create
// the friendship; clients never subscribe to it.
const TopicFriendRequestResponse = "friend-requests/response"

// PresenceTopic carries online/offline level events for one friend.
func PresenceTopic(friend string) string {
	return "online-status/" + friend
}

// FriendRequestTopic carries inbound friend requests addressed to a user.
func FriendRequestTopic(user string) string {
	return "friend-requests/" + user
}

// ChatNotifyTopic carries chat invitations addressed to a user.
func ChatNotifyTopic(user string) string {
	return "chat/notify/" + user
}

// ChatResponseTopic carries invitation responses (ACCEPT, DECLINE, BUSY,
// ENDED) addressed to a user.
func ChatResponseTopic(user string) string {
	return "chat/notification-response/" + user
}

// ChatTopic carries chat messages addressed to a user.
func ChatTopic(user string) string {
	return "chat/" + user
}
