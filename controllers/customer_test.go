package controllers_test

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var trackingCodePattern = regexp.MustCompile(`^[A-Z]{2}\d{7}$`)

func createCustomer(t *testing.T, app *fiber.App, token string, payload fiber.Map) map[string]any {
	t.Helper()
	resp, body := doJSON(t, app, "POST", "/api/customers", token, payload)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create customer failed: %d %v", resp.StatusCode, body)
	}
	return data(t, body)
}

func TestCreateCustomerGeneratesTrackingCode(t *testing.T) {
	app, token, _ := setupTestApp(t)

	payload := customerPayload("Ali", "Toyota")
	payload["email"] = "ali@x.com"
	record := createCustomer(t, app, token, payload)

	code, _ := record["customerId"].(string)
	if !trackingCodePattern.MatchString(code) {
		t.Fatalf("tracking code %q does not match ^[A-Z]{2}\\d{7}$", code)
	}
	if code[:2] != "AT" {
		t.Fatalf("expected AT prefix for Ali/Toyota, got %q", code)
	}

	car, _ := record["car"].(map[string]any)
	if car["status"] != "pending" {
		t.Fatalf("new records must start pending, got %v", car["status"])
	}
}

func TestCreateCustomerRequiresAuth(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp, _ := doJSON(t, app, "POST", "/api/customers", "", customerPayload("Ali", "Toyota"))
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
}

func TestCreateDuplicateEmailRejected(t *testing.T) {
	app, token, _ := setupTestApp(t)

	payload := customerPayload("Ali", "Toyota")
	createCustomer(t, app, token, payload)

	dup := customerPayload("Vali", "BMW")
	dup["email"] = payload["email"]
	resp, _ := doJSON(t, app, "POST", "/api/customers", token, dup)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate email, got %d", resp.StatusCode)
	}

	// The store must remain at one record for that email.
	_, body := doJSON(t, app, "GET", "/api/customers", "", nil)
	list, _ := body["data"].([]any)
	if len(list) != 1 {
		t.Fatalf("expected 1 record, got %d", len(list))
	}
}

func TestCreateDuplicateVinRejected(t *testing.T) {
	app, token, _ := setupTestApp(t)

	payload := customerPayload("Ali", "Toyota")
	createCustomer(t, app, token, payload)

	dup := customerPayload("Vali", "BMW")
	dup["car"].(fiber.Map)["vin"] = payload["car"].(fiber.Map)["vin"]
	resp, _ := doJSON(t, app, "POST", "/api/customers", token, dup)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate VIN, got %d", resp.StatusCode)
	}
}

func TestStatusUpdateByTrackingCode(t *testing.T) {
	app, token, _ := setupTestApp(t)

	record := createCustomer(t, app, token, customerPayload("Ali", "Toyota"))
	code := record["customerId"].(string)
	id := record["id"].(string)

	resp, body := doJSON(t, app, "GET", "/api/customers/customerId/"+code, "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("lookup by code failed: %d %v", resp.StatusCode, body)
	}
	if data(t, body)["car"].(map[string]any)["status"] != "pending" {
		t.Fatalf("expected pending status: %v", body)
	}

	resp, body = doJSON(t, app, "PUT", "/api/customers/"+id, token, fiber.Map{
		"car": fiber.Map{"status": "in_transit"},
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status update failed: %d %v", resp.StatusCode, body)
	}

	_, body = doJSON(t, app, "GET", "/api/customers/customerId/"+code, "", nil)
	car := data(t, body)["car"].(map[string]any)
	if car["status"] != "in_transit" {
		t.Fatalf("expected in_transit after update, got %v", car["status"])
	}
	// The nested merge must not wipe sibling car fields.
	if car["make"] != "Toyota" {
		t.Fatalf("status update clobbered car.make: %v", car)
	}
}

func TestPartialUpdateLeavesOmittedFieldsUnchanged(t *testing.T) {
	app, token, _ := setupTestApp(t)

	record := createCustomer(t, app, token, customerPayload("Ali", "Toyota"))
	id := record["id"].(string)

	resp, body := doJSON(t, app, "PUT", "/api/customers/"+id, token, fiber.Map{
		"phone": "+994559999999",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("partial update failed: %d %v", resp.StatusCode, body)
	}

	_, body = doJSON(t, app, "GET", "/api/customers/"+id, "", nil)
	updated := data(t, body)
	if updated["phone"] != "+994559999999" {
		t.Fatalf("phone not updated: %v", updated["phone"])
	}
	if updated["name"] != record["name"] || updated["email"] != record["email"] || updated["address"] != record["address"] {
		t.Fatalf("omitted fields changed: %v", updated)
	}
	if updated["car"].(map[string]any)["vin"] != record["car"].(map[string]any)["vin"] {
		t.Fatal("omitted car fields changed")
	}
	if updated["customerId"] != record["customerId"] {
		t.Fatal("tracking code changed on update")
	}
}

func TestUpdateInvalidStatusRejected(t *testing.T) {
	app, token, _ := setupTestApp(t)

	record := createCustomer(t, app, token, customerPayload("Ali", "Toyota"))
	resp, _ := doJSON(t, app, "PUT", "/api/customers/"+record["id"].(string), token, fiber.Map{
		"car": fiber.Map{"status": "teleported"},
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", resp.StatusCode)
	}
}

func TestNotFoundResponses(t *testing.T) {
	app, token, _ := setupTestApp(t)

	// Unknown but well-formed id.
	resp, _ := doJSON(t, app, "GET", "/api/customers/"+uuid.NewString(), "", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", resp.StatusCode)
	}

	// Malformed id must also be a 404, never a 500.
	resp, _ = doJSON(t, app, "GET", "/api/customers/not-a-uuid", "", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for malformed id, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, "DELETE", "/api/customers/"+uuid.NewString(), token, nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 deleting unknown id, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, "PUT", "/api/customers/not-a-uuid", token, fiber.Map{"name": "x"})
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 updating malformed id, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, "GET", "/api/customers/customerId/ZZ0000000", "", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown tracking code, got %d", resp.StatusCode)
	}
}

func TestDeleteCustomer(t *testing.T) {
	app, token, _ := setupTestApp(t)

	record := createCustomer(t, app, token, customerPayload("Ali", "Toyota"))
	id := record["id"].(string)

	resp, _ := doJSON(t, app, "DELETE", "/api/customers/"+id, token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("delete failed: %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, "GET", "/api/customers/"+id, "", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, "DELETE", "/api/customers/"+id, token, nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", resp.StatusCode)
	}
}

func TestDeleteRemovesStoredImages(t *testing.T) {
	app, token, uploadDir := setupTestApp(t)

	urls := uploadFiles(t, app, token, "auction", [][2][]byte{
		{[]byte("one.jpg"), jpegBytes(64)},
		{[]byte("two.jpg"), jpegBytes(64)},
	})

	payload := customerPayload("Ali", "Toyota")
	payload["images"] = fiber.Map{"auction": urls}
	record := createCustomer(t, app, token, payload)

	entries, err := os.ReadDir(filepath.Join(uploadDir, "auction"))
	if err != nil || len(entries) != 2 {
		t.Fatalf("expected 2 stored files before delete, got %d (%v)", len(entries), err)
	}

	resp, _ := doJSON(t, app, "DELETE", "/api/customers/"+record["id"].(string), token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("delete failed: %d", resp.StatusCode)
	}

	entries, err = os.ReadDir(filepath.Join(uploadDir, "auction"))
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected stored files removed with the record, %d left", len(entries))
	}
}

func TestListNewestFirst(t *testing.T) {
	app, token, _ := setupTestApp(t)

	for i := 0; i < 3; i++ {
		createCustomer(t, app, token, customerPayload(fmt.Sprintf("Customer%d", i), "Toyota"))
	}

	_, body := doJSON(t, app, "GET", "/api/customers", "", nil)
	list, _ := body["data"].([]any)
	if len(list) != 3 {
		t.Fatalf("expected 3 records, got %d", len(list))
	}
	if list[0].(map[string]any)["name"] != "Customer2" {
		t.Fatalf("expected newest record first, got %v", list[0].(map[string]any)["name"])
	}
}
