/*
Copyright 2025 Legendtrack Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/hordestats/legendtrack/config"
	"github.com/sirupsen/logrus"
)

// SlackNotification posts an error to the configured Slack webhook. Errors
// raised while notifying are logged and swallowed; notification is never on a
// critical path.
func SlackNotification(err error) {
	data := json.RawMessage(fmt.Sprintf(`{
		"blocks": [
			{
				"type": "header",
				"text": {
					"type": "plain_text",
					"text": "Error From Legendtrack 🐞",
					"emoji": true
				}
			},
			{
				"type": "section",
				"fields": [
					{
						"type": "mrkdwn",
						"text": "*Error:*\n%v"
					}
				]
			},
			{
				"type": "section",
				"fields": [
					{
						"type": "mrkdwn",
						"text": "*Time:*\n%v"
					}
				]
			}
		]
	}`, err.Error(), time.Now().Format(time.RFC822)))

	conf, err := config.Fetch()
	if err != nil {
		log.Println(err)
		return
	}
	if conf.Notification.Slack.WebhookUrl == "" {
		return
	}

	payload, err := json.Marshal(data)
	if err != nil {
		logrus.Error(err)
		return
	}

	resp, err := http.Post(conf.Notification.Slack.WebhookUrl, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		logrus.Error(err)
		return
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		logrus.Errorf("slack notification failed with status %d", resp.StatusCode)
	}
}

// NotifyError reports an error in the background.
func NotifyError(systemError error) {
	logrus.Error(systemError)
	go SlackNotification(systemError)
}
