package matrix

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kasuganosora/sr5rules/game/entity"
	"github.com/kasuganosora/sr5rules/game/errs"
	"github.com/kasuganosora/sr5rules/plugin/hook"
)

// NetworkChange is passed to NetworkChanged handlers.
type NetworkChange struct {
	ControllerID string
	Devices      []entity.Link
}

func (s *Service) controller(ctx context.Context, id string) (*entity.Item, error) {
	it, err := s.store.Item(ctx, id)
	if err != nil {
		return nil, err
	}
	if !it.CanBeNetworkController() {
		return nil, fmt.Errorf("item %s cannot control a network: %w", id, errs.ErrConfiguration)
	}
	return it, nil
}

// AddNetworkDevice links device into the controller's network. A device
// linked to another controller is removed from that network first, so it
// is only ever listed by one controller.
func (s *Service) AddNetworkDevice(ctx context.Context, controllerID, deviceID string) error {
	if controllerID == deviceID {
		return fmt.Errorf("item %s cannot join its own network: %w", deviceID, errs.ErrValidation)
	}
	ctrl, err := s.controller(ctx, controllerID)
	if err != nil {
		return err
	}
	device, err := s.store.Item(ctx, deviceID)
	if err != nil {
		return err
	}
	if !device.CanBeNetworkDevice() {
		return fmt.Errorf("item %s cannot join a network: %w", deviceID, errs.ErrConfiguration)
	}

	changed := []*entity.Item{ctrl, device}
	if prev := device.Data.Technology.NetworkController; prev != nil && prev.ID != controllerID {
		old, err := s.store.Item(ctx, prev.ID)
		switch {
		case err == nil:
			old.SetNetworkDevices(withoutLink(old.NetworkDevices(), deviceID))
			changed = append(changed, old)
		case !errors.Is(err, errs.ErrResolution):
			return err
		}
	}

	link := ctrl.AsLink()
	device.Data.Technology.NetworkController = &link
	if !hasLink(ctrl.NetworkDevices(), deviceID) {
		ctrl.SetNetworkDevices(append(ctrl.NetworkDevices(), device.AsLink()))
	}
	if err := s.store.SaveItems(ctx, changed...); err != nil {
		return err
	}
	s.logger.Debug("network device added",
		zap.String("controller_id", controllerID),
		zap.String("device_id", deviceID))
	s.networkChanged(ctx, changed...)
	return nil
}

// AddNetworkController is AddNetworkDevice under the name used from the
// device's side.
func (s *Service) AddNetworkController(ctx context.Context, controllerID, deviceID string) error {
	return s.AddNetworkDevice(ctx, controllerID, deviceID)
}

// RemoveNetworkDevice removes the device link at index. Out of range
// indexes are ignored.
func (s *Service) RemoveNetworkDevice(ctx context.Context, controllerID string, index int) error {
	ctrl, err := s.controller(ctx, controllerID)
	if err != nil {
		return err
	}
	links := ctrl.NetworkDevices()
	if index < 0 || index >= len(links) {
		return nil
	}
	link := links[index]
	rest := append(append([]entity.Link{}, links[:index]...), links[index+1:]...)
	ctrl.SetNetworkDevices(rest)

	changed := []*entity.Item{ctrl}
	if device := s.linkedDevice(ctx, link, controllerID); device != nil {
		device.Data.Technology.NetworkController = nil
		changed = append(changed, device)
	}
	if err := s.store.SaveItems(ctx, changed...); err != nil {
		return err
	}
	s.networkChanged(ctx, ctrl)
	return nil
}

// RemoveAllNetworkDevices empties the controller's network.
func (s *Service) RemoveAllNetworkDevices(ctx context.Context, controllerID string) error {
	ctrl, err := s.controller(ctx, controllerID)
	if err != nil {
		return err
	}
	links := ctrl.NetworkDevices()
	if len(links) == 0 {
		return nil
	}
	changed := []*entity.Item{ctrl}
	for _, link := range links {
		if device := s.linkedDevice(ctx, link, controllerID); device != nil {
			device.Data.Technology.NetworkController = nil
			changed = append(changed, device)
		}
	}
	ctrl.SetNetworkDevices([]entity.Link{})
	if err := s.store.SaveItems(ctx, changed...); err != nil {
		return err
	}
	s.logger.Debug("network cleared", zap.String("controller_id", controllerID), zap.Int("devices", len(links)))
	s.networkChanged(ctx, ctrl)
	return nil
}

// DisconnectFromNetwork detaches an item from every network it takes part
// in: its own as controller and its controller's as device.
func (s *Service) DisconnectFromNetwork(ctx context.Context, itemID string) error {
	it, err := s.store.Item(ctx, itemID)
	if err != nil {
		return err
	}
	if it.CanBeNetworkController() {
		if err := s.RemoveAllNetworkDevices(ctx, itemID); err != nil {
			return err
		}
	}
	if !it.CanBeNetworkDevice() {
		return nil
	}
	// reload, clearing the network above may have touched it
	if it, err = s.store.Item(ctx, itemID); err != nil {
		return err
	}
	prev := it.Data.Technology.NetworkController
	if prev == nil {
		return nil
	}
	it.Data.Technology.NetworkController = nil
	changed := []*entity.Item{it}
	ctrl, err := s.store.Item(ctx, prev.ID)
	switch {
	case err == nil:
		ctrl.SetNetworkDevices(withoutLink(ctrl.NetworkDevices(), itemID))
		changed = append(changed, ctrl)
	case !errors.Is(err, errs.ErrResolution):
		return err
	}
	if err := s.store.SaveItems(ctx, changed...); err != nil {
		return err
	}
	if ctrl != nil {
		s.networkChanged(ctx, ctrl)
	}
	return nil
}

// NetworkDevices resolves the controller's device links. Links to missing
// items are skipped.
func (s *Service) NetworkDevices(ctx context.Context, controllerID string) ([]*entity.Item, error) {
	ctrl, err := s.controller(ctx, controllerID)
	if err != nil {
		return nil, err
	}
	var out []*entity.Item
	for _, link := range ctrl.NetworkDevices() {
		it, err := s.store.Item(ctx, link.ID)
		if err != nil {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

// NetworkController returns the controller of a device, or nil when the
// device is not part of a network.
func (s *Service) NetworkController(ctx context.Context, deviceID string) (*entity.Item, error) {
	device, err := s.store.Item(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if !device.CanBeNetworkDevice() || device.Data.Technology.NetworkController == nil {
		return nil, nil
	}
	ctrl, err := s.store.Item(ctx, device.Data.Technology.NetworkController.ID)
	if errors.Is(err, errs.ErrResolution) {
		return nil, nil
	}
	return ctrl, err
}

// linkedDevice loads the device behind link if it still points at controllerID.
func (s *Service) linkedDevice(ctx context.Context, link entity.Link, controllerID string) *entity.Item {
	device, err := s.store.Item(ctx, link.ID)
	if err != nil || !device.CanBeNetworkDevice() {
		return nil
	}
	if c := device.Data.Technology.NetworkController; c == nil || c.ID != controllerID {
		return nil
	}
	return device
}

func (s *Service) networkChanged(ctx context.Context, items ...*entity.Item) {
	if s.hooks == nil {
		return
	}
	for _, it := range items {
		if !it.CanBeNetworkController() {
			continue
		}
		change := &NetworkChange{ControllerID: it.ID, Devices: append([]entity.Link{}, it.NetworkDevices()...)}
		if _, err := s.hooks.Trigger(ctx, hook.NetworkChanged, change); err != nil {
			s.logger.Warn("network changed hook failed", zap.String("controller_id", it.ID), zap.Error(err))
		}
	}
}

func hasLink(links []entity.Link, id string) bool {
	for _, l := range links {
		if l.ID == id {
			return true
		}
	}
	return false
}

func withoutLink(links []entity.Link, id string) []entity.Link {
	out := make([]entity.Link, 0, len(links))
	for _, l := range links {
		if l.ID != id {
			out = append(out, l)
		}
	}
	return out
}
