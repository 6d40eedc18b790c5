package session

import (
	"context"
	"encoding/json"

	"github.com/HamzaTakiX/Blockchain-project/model"

	"github.com/hyperledger/fabric-gateway/pkg/client"
)

// NotificationKind is the registry event a Notification reports.
type NotificationKind string

const (
	NotificationIssued  NotificationKind = model.EventDiplomaIssued
	NotificationRevoked NotificationKind = model.EventDiplomaRevoked
)

// Notification is a decoded registry event.
type Notification struct {
	Kind           NotificationKind           `json:"kind"`
	StudentAddress string                     `json:"studentAddress"`
	TxID           string                     `json:"txId"`
	BlockNumber    uint64                     `json:"blockNumber"`
	Issued         *model.DiplomaIssuedEvent  `json:"issued,omitempty"`
	Revoked        *model.DiplomaRevokedEvent `json:"revoked,omitempty"`
}

// Watch decodes chaincode events until ctx is done or events is closed.
// Events that are not registry events are skipped.
func (s *Session) Watch(ctx context.Context, events <-chan *client.ChaincodeEvent) <-chan Notification {
	out := make(chan Notification)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				n, ok := decodeEvent(ev)
				if !ok {
					continue
				}
				select {
				case out <- n:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func decodeEvent(ev *client.ChaincodeEvent) (Notification, bool) {
	if ev == nil {
		return Notification{}, false
	}
	n := Notification{Kind: NotificationKind(ev.EventName), TxID: ev.TransactionID, BlockNumber: ev.BlockNumber}
	switch ev.EventName {
	case model.EventDiplomaIssued:
		var payload model.DiplomaIssuedEvent
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			logger.Warningf("Skipping malformed %s event in tx %s: %v", ev.EventName, ev.TransactionID, err)
			return Notification{}, false
		}
		n.StudentAddress = payload.StudentAddress
		n.Issued = &payload
	case model.EventDiplomaRevoked:
		var payload model.DiplomaRevokedEvent
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			logger.Warningf("Skipping malformed %s event in tx %s: %v", ev.EventName, ev.TransactionID, err)
			return Notification{}, false
		}
		n.StudentAddress = payload.StudentAddress
		n.Revoked = &payload
	default:
		logger.Debugf("Ignoring chaincode event '%s' in tx %s", ev.EventName, ev.TransactionID)
		return Notification{}, false
	}
	return n, true
}
