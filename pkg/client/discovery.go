package client

import (
	"context"
	"fmt"
	"github.com/kastellan/goeip/pkg/cip"
	"github.com/kastellan/goeip/pkg/eip"
)

// ListIdentity queries the target's Identity object over the registered
// session.
func (c *Client) ListIdentity() (*cip.Identity, error) {
	return c.session.ListIdentity(context.Background())
}

// ListServices lists the services supported by the target
func (c *Client) ListServices() ([]eip.ListServicesItem, error) {
	return c.session.ListServices(context.Background())
}

// ListTags lists all tags on the PLC by iterating the Symbol Object
func (c *Client) ListTags() ([]cip.SymbolInstance, error) {
	// Step 1: Get Max Instance ID from Symbol Class (Class 0x6B, Instance 0, Attr 2)
	// We also get Revision (Attr 1) just in case.
	reqClass := cip.NewGetSymbolClassAttributesRequest()
	respClass, err := c.session.SendCIPRequest(context.Background(), reqClass)
	if err != nil {
		return nil, fmt.Errorf("failed to get symbol class attributes: %w", err)
	}
	if !respClass.IsSuccess() {
		return nil, respClass.Error()
	}

	_, maxInstance, err := cip.DecodeSymbolClassAttributesResponse(respClass.ResponseData)
	if err != nil {
		return nil, fmt.Errorf("failed to decode symbol class attributes: %w", err)
	}

	c.logger.Infof("Max Symbol Instance: %d", maxInstance)

	var allSymbols []cip.SymbolInstance

	// Step 2: Iterate from 0 to Max Instance
	// Note: Instance 0 is the Class Object, so we start from 1?
	// Symbol Instances usually start at 1.
	// But let's check 0 just in case (though 0 is usually Class).
	// We'll start from 1.

	// Optimization: We could use MultipleServicePacket to batch requests?
	// For now, simple loop.

	for id := uint32(1); id <= uint32(maxInstance); id++ {
		req := cip.NewGetSymbolAttributesRequest(id)
		resp, err := c.session.SendCIPRequest(context.Background(), req)
		if err != nil {
			// Network error, abort? or continue?
			c.logger.Warnf("Failed to fetch attributes for instance %d: %v", id, err)
			continue
		}

		if !resp.IsSuccess() {
			// If Object Does Not Exist, skip
			if resp.GeneralStatus == cip.StatusObjectDoesNotExist || resp.GeneralStatus == cip.StatusPathDestinationUnknown {
				continue
			}
			// Other errors (e.g. Service Not Supported) -> skip
			continue
		}

		name, typeCode, err := cip.DecodeSymbolAttributesResponse(resp.ResponseData)
		if err != nil {
			c.logger.Warnf("Failed to decode attributes for instance %d: %v", id, err)
			continue
		}

		if name != "" {
			allSymbols = append(allSymbols, cip.SymbolInstance{
				InstanceID: id,
				Name:       name,
				Type:       typeCode,
			})
		}
	}

	return allSymbols, nil
}
