package ordertrack

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/hmkim/ordertrack/pkg/listview"
	"github.com/hmkim/ordertrack/pkg/models"
)

func dateString(d *models.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

func intString(n *int) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *n)
}

func strString(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func renderNotices(w io.Writer, notices []Notice) {
	for _, n := range notices {
		switch n.Kind {
		case NoticeError:
			fmt.Fprintf(w, "! %s\n", n.Message)
		default:
			fmt.Fprintf(w, "* %s\n", n.Message)
		}
	}
}

func renderOrders(w io.Writer, page OrdersPage) {
	renderNotices(w, page.Notices)
	if page.LoadError != "" {
		fmt.Fprintf(w, "! %s\n", page.LoadError)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tITEM\tCOLOR\tQTY\tEXPECTED\tARRIVED\tARR QTY\tSTATUS")
	for _, o := range page.Orders {
		expected := dateString(o.ExpectedArrivalStartDate)
		if o.ExpectedArrivalEndDate != nil {
			expected += " ~ " + o.ExpectedArrivalEndDate.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			o.ID, dateString(o.OrderDate), o.ItemCode, o.ColorName,
			o.OrderQuantity, expected, dateString(o.ArrivalDate),
			intString(o.ArrivalQuantity), o.Status)
	}
	tw.Flush()

	fmt.Fprintf(w, "%d orders, %d page(s)\n", page.Total, page.PageCount)
	if page.PageCount > 1 {
		fmt.Fprintln(w, listview.RenderPager(page.Buttons))
	}
}

func renderInventory(w io.Writer, page InventoryPage) {
	renderNotices(w, page.Notices)
	if page.LoadError != "" {
		fmt.Fprintf(w, "! %s\n", page.LoadError)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCOLOR\tSTOCK\tSAFETY\tUNIT\tLOCATION\tLEVEL")
	for _, it := range page.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			it.ID, it.ItemName, strString(it.Color), it.Stock,
			it.SafetyStock, it.Unit, strString(it.Location), it.StockLevel())
	}
	tw.Flush()

	fmt.Fprintf(w, "%d items, %d page(s)\n", page.Total, page.PageCount)
	if page.PageCount > 1 {
		fmt.Fprintln(w, listview.RenderPager(page.Buttons))
	}
}

func renderLogs(w io.Writer, logs []models.InventoryLog) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tQTY\tMEMO\tBY")
	for _, entry := range logs {
		fmt.Fprintf(tw, "%s\t%+d\t%s\t%s\n",
			entry.CreatedAt.Format("2006-01-02 15:04"), entry.Quantity,
			entry.Memo, entry.CreatedBy)
	}
	tw.Flush()
}
