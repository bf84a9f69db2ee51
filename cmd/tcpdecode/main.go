// tcpdecode reads a pcap file, decodes every TCP segment it contains, and
// pretty-prints the resulting decoded state and any anomaly events.
package main

// example:
// go build -o tcpdecode ./cmd/tcpdecode
// ./tcpdecode -filename testdata/sample.pcap
import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/kr/pretty"

	"github.com/netwatch-oss/tcpdecode/config"
	"github.com/netwatch-oss/tcpdecode/metrics"
	"github.com/netwatch-oss/tcpdecode/tcp"
	"github.com/netwatch-oss/tcpdecode/tcpip"
)

var (
	filename      = flag.String("filename", "", "pcap filename to decode.")
	inline        = flag.Bool("inline", false, "Treat the sensor as inline rather than passive.")
	checksums     = flag.Bool("checksums", true, "Verify TCP checksums.")
	checksumDrops = flag.Bool("checksum-drops", false, "Request an active drop on a bad checksum while inline.")
)

func main() {
	flag.Parse()
	if *filename == "" {
		log.Fatal("missing -filename")
	}

	f, err := os.Open(*filename)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	handle, err := pcapgo.NewReader(f)
	if err != nil {
		panic(err)
	}

	policy := config.StaticPolicy{Inline: *inline, Checksums: *checksums, DropOnBad: *checksumDrops}
	sink := tcp.NewLogSink(0)
	codec := tcp.NewTCPCodec(sink, policy, nil, nil)
	codec.Pinit()
	defer codec.Pterm()

	var st tcp.State
	count := 0
	for {
		data, _, err := handle.ReadPacketData()
		if err != nil {
			break
		}
		pkt := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)
		tcpSeg, ip, ok := extractTCP(pkt)
		if !ok {
			continue
		}

		if ok := codec.Decoder().Decode(tcpSeg, ip, &st); !ok {
			fmt.Printf("packet %d: decode failed\n", count)
			count++
			continue
		}
		fmt.Printf("packet %d:\n", count)
		pretty.Println(st)
		count++
	}
	fmt.Println(pretty.Sprint(metrics.DecodeCount))
}

// extractTCP pulls the raw TCP segment bytes (as the IP layer carried them,
// undecoded) and an IP context out of a parsed packet, favoring IPv4 and
// falling back to IPv6. Passing the IP layer's own payload rather than the
// gopacket TCP layer's re-serialized view keeps this decoder exercising the
// exact wire bytes, the same contract Decode expects from any caller.
func extractTCP(pkt gopacket.Packet) ([]byte, tcpip.IPContext, bool) {
	if v4 := pkt.Layer(layers.LayerTypeIPv4); v4 != nil {
		ip := v4.(*layers.IPv4)
		if ip.Protocol == layers.IPProtocolTCP {
			return ip.LayerPayload(), tcpip.FromIPv4(ip), true
		}
	}
	if v6 := pkt.Layer(layers.LayerTypeIPv6); v6 != nil {
		ip := v6.(*layers.IPv6)
		if ip.NextHeader == layers.IPProtocolTCP {
			return ip.LayerPayload(), tcpip.FromIPv6(ip), true
		}
	}
	return nil, nil, false
}
