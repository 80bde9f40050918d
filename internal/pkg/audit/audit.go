package audit

import (
	"encoding/json"
	"log"

	"github.com/shopdeckhq/shopdeck/app/models"
	"github.com/shopdeckhq/shopdeck/app/repository"
)

// appendEntry persists one row. Tests swap it for a capturing fake.
var appendEntry = func(entry *models.AuditLog) error {
	return repository.GetGlobalFactory().GetAuditRepository().Append(entry)
}

// Record appends one audit row for a gated mutation. Failures are logged and
// swallowed: audit writes must never fail the mutation they describe.
func Record(shopID, actorUserID uint, action, targetType, targetID string, detail any) {
	entry := &models.AuditLog{
		ShopID:      shopID,
		ActorUserID: actorUserID,
		Action:      action,
		TargetType:  targetType,
		TargetID:    targetID,
	}
	if detail != nil {
		if b, err := json.Marshal(detail); err == nil {
			entry.Detail = string(b)
		}
	}

	if err := appendEntry(entry); err != nil {
		log.Printf("audit append failed for %s on shop %d: %v", action, shopID, err)
	}
}
