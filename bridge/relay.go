package bridge

import (
	"encoding/json"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sns"

	"github.com/foundationdevices/passport-ur/urerr"
)

// Relay fans out a "decoded message available" notification to an SNS
// topic, generalizing the teacher's phone<->workstation SNS transport
// into a host-side signal a companion service can subscribe to instead of
// polling /session/status.
type Relay struct {
	topicARN string
	client   *sns.SNS
}

// NewRelay builds a Relay bound to one SNS topic ARN, using the default
// AWS credential chain.
func NewRelay(topicARN string) (*Relay, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, urerr.Wrap(urerr.Unsupported, "failed to create aws session for sns relay", err)
	}
	return &Relay{topicARN: topicARN, client: sns.New(sess)}, nil
}

type messageAvailableNotification struct {
	SessionID string `json:"session_id"`
	URType    string `json:"ur_type"`
}

// NotifyMessageAvailable publishes a small JSON notification naming the
// session and type of a message that just finished decoding.
func (r *Relay) NotifyMessageAvailable(sessionID, urType string) error {
	body, err := json.Marshal(messageAvailableNotification{SessionID: sessionID, URType: urType})
	if err != nil {
		return err
	}
	_, err = r.client.Publish(&sns.PublishInput{
		TopicArn: aws.String(r.topicARN),
		Message:  aws.String(string(body)),
	})
	if err != nil {
		return urerr.Wrap(urerr.Unsupported, "sns publish failed", err)
	}
	return nil
}
