package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/smallbiznis/returnsight/internal/batch/domain"
	orderdomain "github.com/smallbiznis/returnsight/internal/order/domain"
)

// Header aliases accepted in uploads, normalized to lower_snake form.
var columnAliases = map[string]string{
	"price":            "price",
	"product_price":    "price",
	"quantity":         "quantity",
	"order_quantity":   "quantity",
	"category":         "category",
	"product_category": "category",
	"gender":           "gender",
	"user_gender":      "gender",
	"payment_method":   "payment_method",
	"age":              "age",
	"user_age":         "age",
	"location":         "location",
	"user_location":    "location",
	"discount":         "discount",
	"discount_applied": "discount",
	"shipping_method":  "shipping_method",
	"order_date":       "order_date",
	"order_id":         "order_id",
}

var requiredColumns = []string{
	"price", "quantity", "category", "gender", "payment_method", "age", "location",
}

// parsedRow is one CSV data row, either a usable order or a parse error
// kept so the row still shows up in the job results.
type parsedRow struct {
	line  int
	order orderdomain.RawOrder
	err   error
}

// parseCSV reads the whole upload upfront: a malformed header fails the
// submit, a malformed data row only fails that row.
func parseCSV(r io.Reader) ([]parsedRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, domain.ErrEmptyUpload
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	index := map[string]int{}
	for i, name := range header {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
		if canonical, ok := columnAliases[key]; ok {
			index[canonical] = i
		}
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingColumns, strings.Join(missing, ", "))
	}

	var rows []parsedRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			rows = append(rows, parsedRow{line: line, err: fmt.Errorf("malformed row: %w", err)})
			continue
		}
		order, err := rowToOrder(record, index)
		rows = append(rows, parsedRow{line: line, order: order, err: err})
	}
	if len(rows) == 0 {
		return nil, domain.ErrEmptyUpload
	}
	return rows, nil
}

func rowToOrder(record []string, index map[string]int) (orderdomain.RawOrder, error) {
	field := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	price, err := strconv.ParseFloat(field("price"), 64)
	if err != nil {
		return orderdomain.RawOrder{}, fmt.Errorf("price: %w", err)
	}
	quantity, err := strconv.Atoi(field("quantity"))
	if err != nil {
		return orderdomain.RawOrder{}, fmt.Errorf("quantity: %w", err)
	}
	age, err := strconv.Atoi(field("age"))
	if err != nil {
		return orderdomain.RawOrder{}, fmt.Errorf("age: %w", err)
	}

	order := orderdomain.RawOrder{
		OrderID:         field("order_id"),
		Price:           price,
		Quantity:        quantity,
		ProductCategory: field("category"),
		Gender:          field("gender"),
		PaymentMethod:   field("payment_method"),
		Age:             age,
		Location:        field("location"),
		ShippingMethod:  field("shipping_method"),
		OrderDate:       field("order_date"),
	}
	if raw := field("discount"); raw != "" {
		discount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return orderdomain.RawOrder{}, fmt.Errorf("discount: %w", err)
		}
		order.DiscountApplied = &discount
	}
	return order, nil
}
