package ledger

import (
	"github.com/jhoicas/abastecimiento-api/internal/application/dto"
	"github.com/jhoicas/abastecimiento-api/internal/domain/entity"
)

func toDeliveryResponse(d *entity.Delivery) *dto.DeliveryResponse {
	if d == nil {
		return nil
	}
	return &dto.DeliveryResponse{
		ID:             d.ID,
		OrderID:        d.OrderID,
		Plate:          d.Plate,
		WeightMeasured: d.WeightMeasured,
		WeightFiscal:   d.WeightFiscal,
		Divergence:     d.Divergence(),
		DriverName:     d.DriverName,
		Date:           d.Date,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:          m.ID,
		MaterialID:  m.MaterialID,
		Quantity:    m.Quantity,
		Type:        string(m.Type),
		ReferenceID: m.ReferenceID,
		Date:        m.Date,
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt,
	}
}

func toPurchaseOrderResponse(o *entity.PurchaseOrder) *dto.PurchaseOrderResponse {
	return &dto.PurchaseOrderResponse{
		ID:         o.ID,
		Date:       o.Date,
		SupplierID: o.SupplierID,
		MaterialID: o.MaterialID,
		Quantity:   o.Quantity,
		Status:     o.Status,
		Notes:      o.Notes,
	}
}
